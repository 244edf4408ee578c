package mocks

import (
	"context"
	"encoding/json"
	"errors"

	kdb "github.com/intelcomp/taskwatch/pkg/db"
	"github.com/intelcomp/taskwatch/pkg/domain"
)

type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

type TaskInterface struct {
	Impl struct {
		Register   func(ctx context.Context, owner string, task domain.Task) error
		Get        func(ctx context.Context, id string) (kdb.Record, error)
		Find       func(ctx context.Context, query kdb.TaskQuery) ([]kdb.Record, error)
		Unfinished func(ctx context.Context) ([]string, error)
		Finish     func(ctx context.Context, id string, outcome kdb.Outcome) error
		Clear      func(ctx context.Context, id string) error
		ClearAll   func(ctx context.Context, category domain.Category, owner *string) ([]string, error)
		Delete     func(ctx context.Context, id string) error
		Logs       func(ctx context.Context, id string) ([]string, error)
		Documents  func(ctx context.Context, id string) ([]json.RawMessage, error)
		PUScores   func(ctx context.Context, id string) ([]string, error)
		PUScore    func(ctx context.Context, id string, name string) ([]byte, error)
	}
	Calls struct {
		Register CallLog[struct {
			Owner string
			Task  domain.Task
		}]
		Get        CallLog[string]
		Find       CallLog[kdb.TaskQuery]
		Unfinished CallLog[struct{}]
		Finish     CallLog[struct {
			Id      string
			Outcome kdb.Outcome
		}]
		Clear    CallLog[string]
		ClearAll CallLog[struct {
			Category domain.Category
			Owner    *string
		}]
		Delete    CallLog[string]
		Logs      CallLog[string]
		Documents CallLog[string]
		PUScores  CallLog[string]
		PUScore   CallLog[struct {
			Id   string
			Name string
		}]
	}
}

var _ kdb.TaskInterface = &TaskInterface{}

func NewTaskInterface() *TaskInterface {
	return &TaskInterface{}
}

func (m *TaskInterface) Register(ctx context.Context, owner string, task domain.Task) error {
	m.Calls.Register = append(m.Calls.Register, struct {
		Owner string
		Task  domain.Task
	}{Owner: owner, Task: task})
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, owner, task)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) Get(ctx context.Context, id string) (kdb.Record, error) {
	m.Calls.Get = append(m.Calls.Get, id)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) Find(ctx context.Context, query kdb.TaskQuery) ([]kdb.Record, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) Unfinished(ctx context.Context) ([]string, error) {
	m.Calls.Unfinished = append(m.Calls.Unfinished, struct{}{})
	if m.Impl.Unfinished != nil {
		return m.Impl.Unfinished(ctx)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) Finish(ctx context.Context, id string, outcome kdb.Outcome) error {
	m.Calls.Finish = append(m.Calls.Finish, struct {
		Id      string
		Outcome kdb.Outcome
	}{Id: id, Outcome: outcome})
	if m.Impl.Finish != nil {
		return m.Impl.Finish(ctx, id, outcome)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) Clear(ctx context.Context, id string) error {
	m.Calls.Clear = append(m.Calls.Clear, id)
	if m.Impl.Clear != nil {
		return m.Impl.Clear(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) ClearAll(ctx context.Context, category domain.Category, owner *string) ([]string, error) {
	m.Calls.ClearAll = append(m.Calls.ClearAll, struct {
		Category domain.Category
		Owner    *string
	}{Category: category, Owner: owner})
	if m.Impl.ClearAll != nil {
		return m.Impl.ClearAll(ctx, category, owner)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) Delete(ctx context.Context, id string) error {
	m.Calls.Delete = append(m.Calls.Delete, id)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) Logs(ctx context.Context, id string) ([]string, error) {
	m.Calls.Logs = append(m.Calls.Logs, id)
	if m.Impl.Logs != nil {
		return m.Impl.Logs(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) Documents(ctx context.Context, id string) ([]json.RawMessage, error) {
	m.Calls.Documents = append(m.Calls.Documents, id)
	if m.Impl.Documents != nil {
		return m.Impl.Documents(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) PUScores(ctx context.Context, id string) ([]string, error) {
	m.Calls.PUScores = append(m.Calls.PUScores, id)
	if m.Impl.PUScores != nil {
		return m.Impl.PUScores(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *TaskInterface) PUScore(ctx context.Context, id string, name string) ([]byte, error) {
	m.Calls.PUScore = append(m.Calls.PUScore, struct {
		Id   string
		Name string
	}{Id: id, Name: name})
	if m.Impl.PUScore != nil {
		return m.Impl.PUScore(ctx, id, name)
	}
	panic(errors.New("it should no be called"))
}
