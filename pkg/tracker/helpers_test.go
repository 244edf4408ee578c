package tracker_test

import (
	"bytes"
	"log"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/tracker"
)

var startedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func training(id string, finished bool) domain.Task {
	return task(id, domain.Training, domain.RunRootTopicTraining, finished)
}

func curating(id string, finished bool) domain.Task {
	return task(id, domain.Curating, domain.FuseTopicModel, finished)
}

func task(id string, category domain.Category, subtype domain.SubType, finished bool) domain.Task {
	t := domain.Task{
		Id:        id,
		Label:     "label of " + id,
		Category:  category,
		SubType:   subtype,
		Finished:  finished,
		StartedAt: startedAt,
	}
	if finished {
		finishedAt := startedAt.Add(time.Hour)
		t.FinishedAt = &finishedAt
	}
	return t
}

func ids(tasks []domain.Task) []string {
	ret := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ret = append(ret, t.Id)
	}
	return ret
}

func assertIds(t *testing.T, what string, actual []domain.Task, expected ...string) {
	t.Helper()
	if expected == nil {
		expected = []string{}
	}
	if a := ids(actual); !slices.Equal(a, expected) {
		t.Errorf("%s: (actual, expected) = (%v, %v)", what, a, expected)
	}
}

func assertPartition(t *testing.T, p tracker.Partition, active []string, finished []string) {
	t.Helper()
	assertIds(t, "active", p.Active(), active...)
	assertIds(t, "finished", p.Finished(), finished...)
}

// recorder collects completions delivered to it.
type recorder struct {
	mu          sync.Mutex
	completions []tracker.Completion
}

func (r *recorder) record(c tracker.Completion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, c)
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := []string{}
	for _, c := range r.completions {
		ret = append(ret, string(c.Category)+"/"+c.Task.Id)
	}
	return ret
}

// syncBuffer is a bytes.Buffer safe for concurrent writes, for loggers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newLogger() (*log.Logger, *syncBuffer) {
	buf := new(syncBuffer)
	return log.New(buf, "", 0), buf
}
