package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/loop"
	"github.com/intelcomp/taskwatch/pkg/utils/logs"
	"github.com/intelcomp/taskwatch/pkg/utils/retry"
)

var ErrAlreadyStarted = errors.New("scheduler has been started already")

const (
	DefaultTrainingInterval = 10 * time.Second
	DefaultCuratingInterval = 2 * time.Second
	DefaultFetchTimeout     = 30 * time.Second
	DefaultBackoffMax       = 2 * time.Minute
	DefaultBackoffJitter    = 0.2
)

// Fetcher lists running tasks of a category.
type Fetcher interface {
	Running(ctx context.Context, category domain.Category) ([]domain.Task, error)
}

// Scheduler polls running tasks of each category periodically and reconciles them.
//
// Each category is polled by its own loop. Polls of a category never overlap each other,
// except Refresh which can run concurrently; stale results are discarded by Reconciler.
type Scheduler struct {
	fetcher    Fetcher
	reconciler *Reconciler
	logger     *log.Logger

	intervals    map[domain.Category]time.Duration
	fetchTimeout time.Duration
	backoffMax   time.Duration
	jitter       float64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Scheduler) *Scheduler

// WithInterval sets the polling interval of the category.
func WithInterval(category domain.Category, interval time.Duration) Option {
	return func(s *Scheduler) *Scheduler {
		if 0 < interval {
			s.intervals[category] = interval
		}
		return s
	}
}

// WithFetchTimeout sets the timeout for each fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) *Scheduler {
		if 0 < timeout {
			s.fetchTimeout = timeout
		}
		return s
	}
}

// WithBackoff configures waiting after failed fetches.
//
// After n successive failures, the next fetch waits for `interval * 2^(n-1)`,
// but no longer than max, spread randomly by jitter ratio.
func WithBackoff(max time.Duration, jitter float64) Option {
	return func(s *Scheduler) *Scheduler {
		if 0 < max {
			s.backoffMax = max
		}
		s.jitter = jitter
		return s
	}
}

func NewScheduler(fetcher Fetcher, reconciler *Reconciler, logger *log.Logger, options ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:    fetcher,
		reconciler: reconciler,
		logger:     logs.ByLogger(logger, logs.Copied()),
		intervals: map[domain.Category]time.Duration{
			domain.Training: DefaultTrainingInterval,
			domain.Curating: DefaultCuratingInterval,
		},
		fetchTimeout: DefaultFetchTimeout,
		backoffMax:   DefaultBackoffMax,
		jitter:       DefaultBackoffJitter,
	}
	for _, opt := range options {
		s = opt(s)
	}
	return s
}

// Interval returns the polling interval of the category.
func (s *Scheduler) Interval(category domain.Category) time.Duration {
	return s.intervals[category]
}

// Start polling.
//
// Each category is fetched immediately, and then repeatedly after its interval.
// Polling continues until Stop is called or ctx is done.
//
// # Returns
//
// - error: ErrAlreadyStarted when it is running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running() {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	wg := new(sync.WaitGroup)
	for _, c := range domain.Categories() {
		wg.Add(1)
		go func(c domain.Category) {
			defer wg.Done()
			s.run(ctx, c)
		}(c)
	}
	go func() {
		wg.Wait()
		cancel()
		close(done)
	}()
	return nil
}

// Stop polling, and wait for loops to finish.
//
// It is safe to call Stop when it is not running. After Stop, Start can be called again.
//
// Stop must not be called from Channel subscribers synchronously, since they run in the loops.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// Running is true when it has been started and not stopped yet.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running()
}

// should be called with s.mu locked.
func (s *Scheduler) running() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Refresh fetches the running tasks of the category once, out of the schedule.
//
// It returns the error of fetching. A discarded (stale) result is not an error.
func (s *Scheduler) Refresh(ctx context.Context, category domain.Category) error {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	ticket := s.reconciler.Begin(category)
	snapshot, err := s.fetcher.Running(ctx, category)
	if err != nil {
		return err
	}
	s.reconciler.Apply(ticket, snapshot)
	return nil
}

func (s *Scheduler) run(ctx context.Context, category domain.Category) {
	logger := logs.ByLogger(s.logger, logs.Copied(), logs.WithPrefix(fmt.Sprintf("[scheduler %s] ", category)))

	interval := s.intervals[category]
	backoffMax := max(s.backoffMax, interval)
	delay := retry.WithJitter(retry.Exponential(interval, 2, backoffMax), s.jitter)

	poll := func(fctx context.Context, failures int) (int, loop.Next) {
		ticket := s.reconciler.Begin(category)
		snapshot, err := s.fetcher.Running(fctx, category)
		if err != nil {
			if ctx.Err() != nil {
				// shutting down
				return failures, loop.Break(nil)
			}
			failures += 1
			wait := delay(failures)
			logger.Printf("failed to fetch running tasks (%d times in a row). retry after %s: %s", failures, wait, err)
			return failures, loop.Continue(wait)
		}

		if 0 < failures {
			logger.Printf("fetch recovered after %d failures", failures)
		}
		s.reconciler.Apply(ticket, snapshot)
		return 0, loop.Continue(interval)
	}

	logger.Printf("start polling (interval: %s)", interval)
	_, err := loop.Start(ctx, 0, poll, loop.WithTimeout(s.fetchTimeout))
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("polling stopped: %s", err)
		return
	}
	logger.Printf("polling stopped")
}
