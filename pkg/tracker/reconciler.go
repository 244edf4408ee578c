package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/utils/logs"
)

// Clearer acknowledges finished tasks on the server.
type Clearer interface {
	Clear(ctx context.Context, taskId string) error
	ClearAll(ctx context.Context, category domain.Category) error
}

// Ticket is issued before fetching a snapshot, and is used to apply the snapshot.
//
// Tickets are ordered per category. A snapshot fetched with an older ticket than
// the last applied one, or than the last clear, is discarded.
type Ticket struct {
	category domain.Category
	seq      uint64
}

func (t Ticket) Category() domain.Category {
	return t.category
}

// Reconciler holds the Partition of each category, and replaces it with polled snapshots.
type Reconciler struct {
	clearer Clearer
	channel *Channel
	logger  *log.Logger
	states  map[domain.Category]*state
}

type state struct {
	// guards the fields below and transitions of current.
	mu sync.Mutex

	// serializes deliveries of completions. It is taken before mu is released.
	delivery sync.Mutex

	current atomic.Pointer[Partition]

	issued  uint64
	applied uint64

	// tickets not newer than this are stale because of a clear
	barrier uint64
}

func NewReconciler(clearer Clearer, channel *Channel, logger *log.Logger) *Reconciler {
	r := &Reconciler{
		clearer: clearer,
		channel: channel,
		logger:  logs.ByLogger(logger, logs.Copied(), logs.WithPrefix("[reconciler] ")),
		states:  map[domain.Category]*state{},
	}
	for _, c := range domain.Categories() {
		st := &state{}
		st.current.Store(&Partition{active: []domain.Task{}, finished: []domain.Task{}})
		r.states[c] = st
	}
	return r
}

func (r *Reconciler) state(category domain.Category) (*state, error) {
	st, ok := r.states[category]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' is not Category", domain.ErrUnknown, category)
	}
	return st, nil
}

// Channel returns the Channel where completions are published.
func (r *Reconciler) Channel() *Channel {
	return r.channel
}

// Partition returns the current Partition of the category.
//
// It never blocks. For unknown categories, it returns an empty Partition.
func (r *Reconciler) Partition(category domain.Category) Partition {
	st, err := r.state(category)
	if err != nil {
		return Partition{}
	}
	return *st.current.Load()
}

// Begin issues a Ticket for a fetch which is about to start.
func (r *Reconciler) Begin(category domain.Category) Ticket {
	st, err := r.state(category)
	if err != nil {
		return Ticket{category: category}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.issued += 1
	return Ticket{category: category, seq: st.issued}
}

// Reconcile applies the snapshot just fetched.
//
// It returns tasks found finished for the first time in this snapshot.
func (r *Reconciler) Reconcile(category domain.Category, snapshot []domain.Task) []domain.Task {
	newlyFinished, _ := r.Apply(r.Begin(category), snapshot)
	return newlyFinished
}

// Apply replaces the Partition of the ticket's category with the snapshot,
// and publishes completions of tasks found finished for the first time.
//
// When the ticket is stale, the snapshot is discarded and applied is false.
//
// Completions are delivered before Apply returns.
func (r *Reconciler) Apply(ticket Ticket, snapshot []domain.Task) (newlyFinished []domain.Task, applied bool) {
	category := ticket.category
	st, err := r.state(category)
	if err != nil {
		r.logger.Printf("snapshot of unknown category is discarded: %s", category)
		return nil, false
	}

	st.mu.Lock()
	if ticket.seq <= st.applied || ticket.seq <= st.barrier {
		st.mu.Unlock()
		r.logger.Printf(
			"stale snapshot of %s is discarded: ticket #%d (applied #%d, cleared until #%d)",
			category, ticket.seq, st.applied, st.barrier,
		)
		return nil, false
	}

	for _, t := range snapshot {
		if t.Category != category {
			r.logger.Printf("WARNING: task %s in %s snapshot has category %s", t.Id, category, t.Category)
		}
	}

	prev := st.current.Load()
	next := NewPartition(snapshot)

	newlyFinished = []domain.Task{}
	for _, t := range next.finished {
		if !prev.isFinished(t.Id) {
			newlyFinished = append(newlyFinished, t)
		}
	}

	vanished := []string{}
	for _, t := range prev.active {
		if _, ok := next.Get(t.Id); !ok {
			vanished = append(vanished, t.Id)
		}
	}

	// cleared by someone else
	for _, t := range prev.finished {
		if _, ok := next.Get(t.Id); !ok {
			r.channel.Forget(category, t.Id)
		}
	}

	for _, t := range next.active {
		if prev.isFinished(t.Id) {
			r.logger.Printf("WARNING: task %s of %s was finished but is reported as active", t.Id, category)
			r.channel.Forget(category, t.Id)
		}
	}

	st.current.Store(&next)
	st.applied = ticket.seq
	r.channel.record(category, newlyFinished, vanished)

	st.delivery.Lock()
	st.mu.Unlock()
	defer st.delivery.Unlock()

	r.channel.deliver(category, newlyFinished)
	return newlyFinished, true
}

// ClearOne clears the finished task on the server, and then removes it from Finished().
//
// When the server fails, the error is returned and nothing is changed.
// Snapshots of tickets issued before the clear are discarded after that.
func (r *Reconciler) ClearOne(ctx context.Context, category domain.Category, id string) error {
	st, err := r.state(category)
	if err != nil {
		return err
	}
	if err := r.clearer.Clear(ctx, id); err != nil {
		return err
	}

	st.mu.Lock()
	st.barrier = st.issued
	next := st.current.Load().withoutFinished(id)
	st.current.Store(&next)
	r.channel.Forget(category, id)
	st.mu.Unlock()

	return nil
}

// ClearAll clears all finished tasks of the category on the server, and then empties Finished().
//
// When the server fails, the error is returned and nothing is changed.
func (r *Reconciler) ClearAll(ctx context.Context, category domain.Category) error {
	st, err := r.state(category)
	if err != nil {
		return err
	}
	if err := r.clearer.ClearAll(ctx, category); err != nil {
		return err
	}

	st.mu.Lock()
	st.barrier = st.issued
	next := st.current.Load().withoutAllFinished()
	st.current.Store(&next)
	r.channel.forgetCategory(category)
	st.mu.Unlock()

	return nil
}
