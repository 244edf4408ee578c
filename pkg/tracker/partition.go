package tracker

import (
	"slices"

	"github.com/intelcomp/taskwatch/pkg/domain"
)

// Partition is the latest known tasks of a category, split into active and finished.
//
// Partition is immutable. The union of Active() and Finished() is the snapshot
// which the Partition is made from, and an id appears in at most one of them.
type Partition struct {
	active   []domain.Task
	finished []domain.Task
}

// NewPartition splits the snapshot keeping its order.
//
// When the snapshot has duplicated ids, the first one wins.
func NewPartition(snapshot []domain.Task) Partition {
	p := Partition{
		active:   []domain.Task{},
		finished: []domain.Task{},
	}
	seen := map[string]struct{}{}
	for _, t := range snapshot {
		if _, ok := seen[t.Id]; ok {
			continue
		}
		seen[t.Id] = struct{}{}

		if t.Finished {
			p.finished = append(p.finished, t)
		} else {
			p.active = append(p.active, t)
		}
	}
	return p
}

// Active returns unfinished tasks. The returned slice can be modified by the caller.
func (p Partition) Active() []domain.Task {
	return slices.Clone(p.active)
}

// Finished returns finished but not cleared tasks. The returned slice can be modified by the caller.
func (p Partition) Finished() []domain.Task {
	return slices.Clone(p.finished)
}

func (p Partition) Len() int {
	return len(p.active) + len(p.finished)
}

// Get finds the task by id.
func (p Partition) Get(id string) (domain.Task, bool) {
	if t, ok := find(p.active, id); ok {
		return t, true
	}
	return find(p.finished, id)
}

func (p Partition) isFinished(id string) bool {
	_, ok := find(p.finished, id)
	return ok
}

func (p Partition) withoutFinished(id string) Partition {
	return Partition{
		active: p.active,
		finished: slices.DeleteFunc(
			slices.Clone(p.finished),
			func(t domain.Task) bool { return t.Id == id },
		),
	}
}

func (p Partition) withoutAllFinished() Partition {
	return Partition{active: p.active, finished: []domain.Task{}}
}

func find(tasks []domain.Task, id string) (domain.Task, bool) {
	for _, t := range tasks {
		if t.Id == id {
			return t, true
		}
	}
	return domain.Task{}, false
}
