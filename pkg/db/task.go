package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/intelcomp/taskwatch/pkg/domain"
)

var (
	// the entity to be created is already there.
	ErrConflict = errors.New("conflict")

	// the task is not in a state accepting the operation.
	ErrInvalidState = errors.New("invalid task state")
)

// Record is a Task with attributes only the store knows.
type Record struct {
	domain.Task

	// name of the user who has submitted the task.
	Owner string
}

// Outcome is what a finished task has left.
type Outcome struct {
	// when the task is finished.
	FinishedAt time.Time

	// opaque response of the task.
	Response []byte

	// log lines of the task.
	Logs []string

	// documents produced by the task (for curating tasks, mainly).
	Documents []json.RawMessage

	// PU score images by name (for training tasks).
	PUScores map[string][]byte
}

// TaskQuery selects tasks in a category.
type TaskQuery struct {
	Category domain.Category

	// if not nil, only tasks owned by the user are selected.
	Owner *string

	// if true, finished tasks are excluded.
	UnfinishedOnly bool
}

type TaskInterface interface {
	// Register a new task.
	//
	// # Returns
	//
	// - error: ErrConflict if a task with the same id exists.
	Register(ctx context.Context, owner string, task domain.Task) error

	// Get a task by id.
	//
	// # Returns
	//
	// - error: domain.ErrMissing if not found.
	Get(ctx context.Context, id string) (Record, error)

	// Find tasks matching with the query, ordered by StartedAt and then Id.
	Find(ctx context.Context, query TaskQuery) ([]Record, error)

	// Unfinished returns ids of all unfinished tasks in any category.
	Unfinished(ctx context.Context) ([]string, error)

	// Finish marks the task finished with its outcome.
	//
	// # Returns
	//
	// - error: domain.ErrMissing if not found, ErrInvalidState if it has been finished already.
	Finish(ctx context.Context, id string, outcome Outcome) error

	// Clear removes the task if it is finished.
	//
	// Clearing missing or unfinished task is not an error; nothing happens.
	Clear(ctx context.Context, id string) error

	// ClearAll removes all finished tasks in the category (and owned by the owner, if given).
	//
	// # Returns
	//
	// - []string: ids of removed tasks.
	ClearAll(ctx context.Context, category domain.Category, owner *string) ([]string, error)

	// Delete removes the task whether it is finished or not.
	//
	// # Returns
	//
	// - error: domain.ErrMissing if not found.
	Delete(ctx context.Context, id string) error

	// Logs returns log lines of the task.
	Logs(ctx context.Context, id string) ([]string, error)

	// Documents returns documents produced by the task.
	Documents(ctx context.Context, id string) ([]json.RawMessage, error)

	// PUScores returns names of PU score images of the task.
	PUScores(ctx context.Context, id string) ([]string, error)

	// PUScore returns a PU score image of the task.
	//
	// # Returns
	//
	// - error: domain.ErrMissing if the task or the image is not found.
	PUScore(ctx context.Context, id string, name string) ([]byte, error)
}

type SchemaInterface interface {
	// Version returns the schema version applied to the database. 0 means no schema.
	Version(ctx context.Context) (int, error)

	// Latest returns the newest schema version this module knows.
	Latest() (int, error)

	// Upgrade applies schemas newer than the current version.
	Upgrade(ctx context.Context) error
}

// Database is the root of the task store.
type Database interface {
	Tasks() TaskInterface
	Schema() SchemaInterface
	Close() error
}
