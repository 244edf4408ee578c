package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

var ErrRetry = errors.New("retry")

// Delay tells how long to wait before the n-th retry (n >= 1).
type Delay func(n int) time.Duration

// Exponential returns a Delay growing as `initial * r^(n-1)`, but not longer than max.
//
// When max <= 0, the delay is not capped.
func Exponential(initial time.Duration, r float64, max time.Duration) Delay {
	return func(n int) time.Duration {
		if n < 1 {
			n = 1
		}
		d := float64(initial) * math.Pow(r, float64(n-1))
		if max > 0 && (math.IsInf(d, 0) || float64(max) < d) {
			return max
		}
		return time.Duration(int64(d))
	}
}

// Static returns a Delay which is always `interval`.
func Static(interval time.Duration) Delay {
	return func(int) time.Duration { return interval }
}

// WithJitter spreads delays randomly in [d * (1 - ratio), d * (1 + ratio)).
//
// ratio is clamped into [0, 1].
func WithJitter(delay Delay, ratio float64) Delay {
	ratio = math.Max(0, math.Min(1, ratio))
	if ratio == 0 {
		return delay
	}
	return func(n int) time.Duration {
		d := float64(delay(n))
		spread := d * ratio
		return time.Duration(int64(d - spread + rand.Float64()*2*spread))
	}
}

// Backoff is a (blocking) function returns when to retry.
//
// # Args
//
// - context: context. If context is canceled, Backoff should return ctx.Err().
//
// # Returns
//
// - error: nil if retry, non-nil if not.
type Backoff func(context.Context) error

// Backoff returns a Backoff function that waits for Delay(1), Delay(2), ... for each call.
func (d Delay) Backoff() Backoff {
	n := 0
	return func(ctx context.Context) error {
		n += 1
		timer := time.NewTimer(d(n))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// StaticBackoff returns a Backoff function that waits for a fixed interval.
func StaticBackoff(interval time.Duration) Backoff {
	return Static(interval).Backoff()
}

// Blocking calls f until it returns nil or non-retry error.
//
// f is called at first immediately, and then after each backoff.
//
// # Args
//
// - ctx: context
//
// - b: backoff function
//
// - f: function to be called. If f returns ErrRetry, Blocking calls f again after backoff.
//
// # Returns
//
// - T: last return value of f
//
// - error: error returned by f, or by b.
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	for {
		last, err := f()
		if err == nil {
			return last, nil
		}
		if !errors.Is(err, ErrRetry) {
			return last, err
		}
		if err := b(ctx); err != nil {
			return last, err
		}
	}
}

type Result[T any] struct {
	Value T
	Err   error
}

// Promise is a channel which yields exactly one Result and then is closed.
type Promise[T any] <-chan Result[T]

func Failed[T any](err error) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Err: err}
	close(ch)
	return ch
}

func Ok[T any](value T) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Value: value}
	close(ch)
	return ch
}

// Wait blocks until the promise is settled or ctx is done.
func (p Promise[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-ctx.Done():
		return *new(T), ctx.Err()
	case r, ok := <-p:
		if !ok {
			return *new(T), errors.New("promise has been consumed")
		}
		return r.Value, r.Err
	}
}
