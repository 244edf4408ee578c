package loop

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Next tells the loop what to do after a task.
type Next struct {
	// if not nil, breaks with error
	err error

	// if quit == true and err == nil, breaks without error
	quit bool

	// otherwise, continue loop with interval.
	interval time.Duration
}

func (n Next) String() string {
	if n.err != nil {
		return fmt.Sprintf("[break] with error: %v", n.err)
	}
	if n.quit {
		return "[break] without error"
	}

	return fmt.Sprintf("[continue] interval: %s", n.interval)
}

// Interval returns the waiting time before the next run, and whether the loop continues.
func (n Next) Interval() (time.Duration, bool) {
	if n.quit {
		return 0, false
	}
	return n.interval, true
}

// continue loop.
//
// args:
//
// - interval: sleep before starting next task.
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// break loop.
//
// args:
//
// - err: If you break loop with error, set non nil value.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

// Task is a body of loop.
//
// It receives (sub-)context and the value returned by the last run,
// and returns a new value and what to do next.
type Task[T any] func(context.Context, T) (T, Next)

// Start task in loop.
//
// The task is called at once, and then after the interval it returned with Continue(interval).
// Zero value (Next{}) equals Continue(0), that is, "go next ASAP!".
//
// # Example
//
// Count 1 to 10:
//
//	Start(ctx, 1, func(_ context.Context, value int) (int, Next) {
//		value += 1
//		if 10 <= value {
//			return value, Break(nil)
//		}
//		return value, Continue(0)
//	})
//
// # Args
//
// - ctx : context. When this context get be Done, loop will be break with ctx.Err().
//
// - init : your task will be called as task(ctx, init) at the first time.
//
// - task : task receiving (context, last value), then return (new value, Continue() or Break()).
//
// - options: options for loop.
//
// # Returns
//
// - T: T task returns at last.
// This value is always returned wheather or not it returns non-nil error together.
//
// - error: error in Break(error). It is nil when loop breaks with Break(nil).
func Start[T any](ctx context.Context, init T, task Task[T], options ...LoopOption) (T, error) {
	select {
	case <-ctx.Done():
		return init, ctx.Err()
	default:
	}

	value := init
	for {
		lc := &loopConfig{ctx: ctx}
		for _, opt := range options {
			lc = opt(lc)
		}

		v, n := func() (T, Next) {
			if lc.deferred != nil {
				defer lc.deferred()
			}
			return task(lc.ctx, value)
		}()

		if n.err != nil {
			return v, n.err
		} else if n.quit {
			return v, nil
		}
		value = v

		timer := time.NewTimer(n.interval)
		select {
		case <-ctx.Done():
			// shutting down comes first.
			timer.Stop()
			return value, ctx.Err()
		case <-timer.C:
		}
	}
}

type loopConfig struct {
	ctx      context.Context
	deferred func()
}

type LoopOption func(*loopConfig) *loopConfig

// set timeout per loop
//
// this timeout is set on context.Context passed to task.
func WithTimeout(d time.Duration) LoopOption {
	return func(lc *loopConfig) *loopConfig {
		if d <= 0 {
			return lc
		}
		ctx, cancel := context.WithTimeout(lc.ctx, d)
		return &loopConfig{
			ctx: ctx,
			deferred: func() {
				if lc.deferred != nil {
					defer lc.deferred()
				}
				cancel()
			},
		}
	}
}

// Monitor wraps a task to log the start and the end of each run.
func Monitor[T any](logger *log.Logger, task Task[T]) Task[T] {
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next Next) {
		counter += 1
		timestamp := time.Now()

		logger.Printf("task start: #0x%X", counter)
		defer func() {
			logger.Printf(
				"task end: #0x%X (takes %s): %s",
				counter, time.Since(timestamp), next,
			)
		}()

		ret, next = task(ctx, t)
		return
	}
}
