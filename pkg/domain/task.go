package domain

import (
	"bytes"
	"fmt"
	"time"
)

// Task is a unit of asynchronous work tracked by the backend.
type Task struct {
	// identifier of the task. It is unique in a category at any point in time.
	Id string

	// human readable name. Often it is the name of the target model or corpus.
	Label string

	Category Category
	SubType  SubType

	// true if the task has been finished.
	//
	// For a well-behaved backend, once it is reported as true, it will not be false again for the same Id.
	Finished bool

	StartedAt time.Time

	// time when the task is finished. nil until Finished is true.
	FinishedAt *time.Time

	// opaque data of submission. This module does not interpret it.
	Payload []byte

	// opaque data of completion. This module does not interpret it.
	Response []byte
}

func (t Task) Equal(o Task) bool {
	if t.FinishedAt == nil || o.FinishedAt == nil {
		if t.FinishedAt != o.FinishedAt {
			return false
		}
	} else if !t.FinishedAt.Equal(*o.FinishedAt) {
		return false
	}

	return t.Id == o.Id &&
		t.Label == o.Label &&
		t.Category == o.Category &&
		t.SubType == o.SubType &&
		t.Finished == o.Finished &&
		t.StartedAt.Equal(o.StartedAt) &&
		bytes.Equal(t.Payload, o.Payload) &&
		bytes.Equal(t.Response, o.Response)
}

// Status is a coarse status of a task.
type Status string

const (
	// The task is known and not finished yet.
	Pending Status = "PENDING"

	// The task has been finished.
	Completed Status = "COMPLETED"

	// The task is not known, or it can not be tracked anymore.
	Error Status = "ERROR"
)

func (s Status) String() string {
	return string(s)
}

// Settled is true when the status will not change anymore.
func (s Status) Settled() bool {
	return s == Completed || s == Error
}

func AsStatus(s string) (Status, error) {
	switch s {
	case string(Pending):
		return Pending, nil
	case string(Completed):
		return Completed, nil
	case string(Error):
		return Error, nil
	}
	return "", fmt.Errorf("%w: '%s' is not Status", ErrUnknown, s)
}

// StatusOf tells the Status of the task.
func StatusOf(t Task) Status {
	if t.Finished {
		return Completed
	}
	return Pending
}
