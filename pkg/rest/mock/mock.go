package mock

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	apitasks "github.com/intelcomp/taskwatch/pkg/api/types/tasks"
	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/rest"
)

var ErrNotReady = errors.New("mock is not ready to be called")

type PUScoreArgs struct {
	TaskId string
	Name   string
}

// New creates a mock of rest.TaskClient.
//
// It is safe to be called from multiple goroutines.
// Read Calls after goroutines calling the mock are finished.
func New(t *testing.T) *MockTaskClient {
	return &MockTaskClient{t: t}
}

type MockTaskClient struct {
	t  *testing.T
	mu sync.Mutex

	Impl struct {
		Running   func(ctx context.Context, category domain.Category) ([]domain.Task, error)
		Status    func(ctx context.Context, taskId string) (domain.Status, error)
		Clear     func(ctx context.Context, taskId string) error
		ClearAll  func(ctx context.Context, category domain.Category) error
		Cancel    func(ctx context.Context, taskId string) error
		Logs      func(ctx context.Context, taskId string) ([]string, error)
		Documents func(ctx context.Context, taskId string) ([]json.RawMessage, error)
		PUScores  func(ctx context.Context, taskId string) ([]string, error)
		PUScore   func(ctx context.Context, taskId string, name string) ([]byte, error)
		Submit    func(ctx context.Context, submission apitasks.Submission) (domain.Task, error)
	}
	Calls struct {
		Running   []domain.Category
		Status    []string
		Clear     []string
		ClearAll  []domain.Category
		Cancel    []string
		Logs      []string
		Documents []string
		PUScores  []string
		PUScore   []PUScoreArgs
		Submit    []apitasks.Submission
	}
}

var _ rest.TaskClient = &MockTaskClient{}

// record the call, and return whether Impl is ready.
func (m *MockTaskClient) record(name string, ready bool, rec func()) bool {
	m.t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	rec()
	if !ready {
		m.t.Errorf("%s is not ready to be called", name)
	}
	return ready
}

// CountRunning returns how many times Running is called for the category so far.
func (m *MockTaskClient) CountRunning(category domain.Category) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls.Running {
		if c == category {
			n += 1
		}
	}
	return n
}

func (m *MockTaskClient) Running(ctx context.Context, category domain.Category) ([]domain.Task, error) {
	m.t.Helper()
	if !m.record("Running", m.Impl.Running != nil, func() { m.Calls.Running = append(m.Calls.Running, category) }) {
		return nil, ErrNotReady
	}
	return m.Impl.Running(ctx, category)
}

func (m *MockTaskClient) Status(ctx context.Context, taskId string) (domain.Status, error) {
	m.t.Helper()
	if !m.record("Status", m.Impl.Status != nil, func() { m.Calls.Status = append(m.Calls.Status, taskId) }) {
		return "", ErrNotReady
	}
	return m.Impl.Status(ctx, taskId)
}

func (m *MockTaskClient) Clear(ctx context.Context, taskId string) error {
	m.t.Helper()
	if !m.record("Clear", m.Impl.Clear != nil, func() { m.Calls.Clear = append(m.Calls.Clear, taskId) }) {
		return ErrNotReady
	}
	return m.Impl.Clear(ctx, taskId)
}

func (m *MockTaskClient) ClearAll(ctx context.Context, category domain.Category) error {
	m.t.Helper()
	if !m.record("ClearAll", m.Impl.ClearAll != nil, func() { m.Calls.ClearAll = append(m.Calls.ClearAll, category) }) {
		return ErrNotReady
	}
	return m.Impl.ClearAll(ctx, category)
}

func (m *MockTaskClient) Cancel(ctx context.Context, taskId string) error {
	m.t.Helper()
	if !m.record("Cancel", m.Impl.Cancel != nil, func() { m.Calls.Cancel = append(m.Calls.Cancel, taskId) }) {
		return ErrNotReady
	}
	return m.Impl.Cancel(ctx, taskId)
}

func (m *MockTaskClient) Logs(ctx context.Context, taskId string) ([]string, error) {
	m.t.Helper()
	if !m.record("Logs", m.Impl.Logs != nil, func() { m.Calls.Logs = append(m.Calls.Logs, taskId) }) {
		return nil, ErrNotReady
	}
	return m.Impl.Logs(ctx, taskId)
}

func (m *MockTaskClient) Documents(ctx context.Context, taskId string) ([]json.RawMessage, error) {
	m.t.Helper()
	if !m.record("Documents", m.Impl.Documents != nil, func() { m.Calls.Documents = append(m.Calls.Documents, taskId) }) {
		return nil, ErrNotReady
	}
	return m.Impl.Documents(ctx, taskId)
}

func (m *MockTaskClient) PUScores(ctx context.Context, taskId string) ([]string, error) {
	m.t.Helper()
	if !m.record("PUScores", m.Impl.PUScores != nil, func() { m.Calls.PUScores = append(m.Calls.PUScores, taskId) }) {
		return nil, ErrNotReady
	}
	return m.Impl.PUScores(ctx, taskId)
}

func (m *MockTaskClient) PUScore(ctx context.Context, taskId string, name string) ([]byte, error) {
	m.t.Helper()
	if !m.record("PUScore", m.Impl.PUScore != nil, func() {
		m.Calls.PUScore = append(m.Calls.PUScore, PUScoreArgs{TaskId: taskId, Name: name})
	}) {
		return nil, ErrNotReady
	}
	return m.Impl.PUScore(ctx, taskId, name)
}

func (m *MockTaskClient) Submit(ctx context.Context, submission apitasks.Submission) (domain.Task, error) {
	m.t.Helper()
	if !m.record("Submit", m.Impl.Submit != nil, func() { m.Calls.Submit = append(m.Calls.Submit, submission) }) {
		return domain.Task{}, ErrNotReady
	}
	return m.Impl.Submit(ctx, submission)
}
