package tracker

import (
	"errors"
	"sync"

	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/utils/retry"
)

// ErrVanished is the result of Await when the task disappears from the running tasks
// without being observed as finished.
var ErrVanished = errors.New("task vanished without finishing")

// Completion is a notification that a task is found finished for the first time.
type Completion struct {
	Category domain.Category
	Task     domain.Task
}

// Channel delivers Completions to subscribers.
//
// Delivery is synchronous and in reconciliation order per category.
// Completions published before subscribing are not replayed; use Await to wait for a specific task.
type Channel struct {
	mu sync.Mutex

	nextId      uint64
	subscribers []subscription

	// pending futures by task
	waiting map[taskKey][]chan retry.Result[domain.Task]

	// completions published in this process, which are not forgotten yet
	completed map[taskKey]domain.Task
}

type taskKey struct {
	category domain.Category
	id       string
}

type subscription struct {
	id uint64

	// nil for all categories
	category *domain.Category

	fn func(Completion)
}

func NewChannel() *Channel {
	return &Channel{
		waiting:   map[taskKey][]chan retry.Result[domain.Task]{},
		completed: map[taskKey]domain.Task{},
	}
}

// Subscribe registers fn to be called for each Completion of any category.
//
// fn is called on the goroutine reconciling the category. It must not reconcile
// the same category synchronously, or it deadlocks.
//
// The returned function unsubscribes. A delivery already in progress may still call fn once.
func (ch *Channel) Subscribe(fn func(Completion)) (unsubscribe func()) {
	return ch.subscribe(nil, fn)
}

// SubscribeCategory is Subscribe for Completions of the category only.
func (ch *Channel) SubscribeCategory(category domain.Category, fn func(Completion)) (unsubscribe func()) {
	return ch.subscribe(&category, fn)
}

func (ch *Channel) subscribe(category *domain.Category, fn func(Completion)) func() {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.nextId += 1
	id := ch.nextId
	ch.subscribers = append(ch.subscribers, subscription{id: id, category: category, fn: fn})

	once := new(sync.Once)
	return func() {
		once.Do(func() {
			ch.mu.Lock()
			defer ch.mu.Unlock()
			for n, s := range ch.subscribers {
				if s.id == id {
					// copy on write. Deliveries in progress hold the old slice.
					subs := make([]subscription, 0, len(ch.subscribers)-1)
					subs = append(subs, ch.subscribers[:n]...)
					ch.subscribers = append(subs, ch.subscribers[n+1:]...)
					return
				}
			}
		})
	}
}

// Await returns a Promise resolved with the task when it is found finished.
//
// If the task has been found finished already (and not cleared yet), the Promise is resolved immediately.
// If the task disappears from the running tasks without finishing, it is resolved with ErrVanished.
//
// The Promise is resolved at most once.
func (ch *Channel) Await(category domain.Category, id string) retry.Promise[domain.Task] {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	key := taskKey{category: category, id: id}
	if t, ok := ch.completed[key]; ok {
		return retry.Ok(t)
	}

	p := make(chan retry.Result[domain.Task], 1)
	ch.waiting[key] = append(ch.waiting[key], p)
	return p
}

// Forget drops the record of the completion of the task.
//
// After that, Await for the task waits for a new completion.
func (ch *Channel) Forget(category domain.Category, id string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	delete(ch.completed, taskKey{category: category, id: id})
}

func (ch *Channel) forgetCategory(category domain.Category) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	for k := range ch.completed {
		if k.category == category {
			delete(ch.completed, k)
		}
	}
}

// record resolves futures of the finished and the vanished tasks,
// and remembers completions for later Await.
//
// Callers serialize record per category together with changes of the partition.
func (ch *Channel) record(category domain.Category, finished []domain.Task, vanished []string) {
	if len(finished) == 0 && len(vanished) == 0 {
		return
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	for _, t := range finished {
		key := taskKey{category: category, id: t.Id}
		ch.completed[key] = t
		ch.resolve(key, retry.Result[domain.Task]{Value: t})
	}
	for _, id := range vanished {
		ch.resolve(taskKey{category: category, id: id}, retry.Result[domain.Task]{Err: ErrVanished})
	}
}

// deliver calls subscribers in order.
//
// Callers serialize deliver per category.
func (ch *Channel) deliver(category domain.Category, tasks []domain.Task) {
	if len(tasks) == 0 {
		return
	}

	ch.mu.Lock()
	subscribers := ch.subscribers
	ch.mu.Unlock()

	for _, t := range tasks {
		c := Completion{Category: category, Task: t}
		for _, s := range subscribers {
			if s.category != nil && *s.category != category {
				continue
			}
			s.fn(c)
		}
	}
}

// should be called with ch.mu locked.
func (ch *Channel) resolve(key taskKey, result retry.Result[domain.Task]) {
	for _, p := range ch.waiting[key] {
		p <- result
		close(p)
	}
	delete(ch.waiting, key)
}
