package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/intelcomp/taskwatch/pkg/domain"
)

// Item is a task in the task API.
type Item struct {
	Id         string     `json:"task"`
	Label      string     `json:"label"`
	Type       string     `json:"type"`
	SubType    string     `json:"subType"`
	Finished   bool       `json:"finished"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Payload    string     `json:"payload,omitempty"`
	Response   string     `json:"response,omitempty"`
}

func (i Item) Equal(o Item) bool {
	if (i.FinishedAt == nil) != (o.FinishedAt == nil) {
		return false
	}
	if i.FinishedAt != nil && !i.FinishedAt.Equal(*o.FinishedAt) {
		return false
	}
	return i.Id == o.Id &&
		i.Label == o.Label &&
		i.Type == o.Type &&
		i.SubType == o.SubType &&
		i.Finished == o.Finished &&
		i.StartedAt.Equal(o.StartedAt) &&
		i.Payload == o.Payload &&
		i.Response == o.Response
}

// QueryResult is a list response of the task API.
type QueryResult[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func NewQueryResult[T any](items []T) QueryResult[T] {
	if items == nil {
		items = []T{}
	}
	return QueryResult[T]{Items: items, Count: len(items)}
}

// Submission is a request body to start a new task.
type Submission struct {
	Label   string `json:"label"`
	SubType string `json:"subType"`
	Payload string `json:"payload,omitempty"`
}

// ComposeItem converts domain.Task into Item.
func ComposeItem(t domain.Task) Item {
	return Item{
		Id:         t.Id,
		Label:      t.Label,
		Type:       t.Category.String(),
		SubType:    t.SubType.String(),
		Finished:   t.Finished,
		StartedAt:  t.StartedAt,
		FinishedAt: t.FinishedAt,
		Payload:    string(t.Payload),
		Response:   string(t.Response),
	}
}

// Task converts Item into domain.Task.
//
// Unknown subtypes are kept as they are, since the server may know operations newer than this client.
// Unknown categories are rejected, and so are known subtypes sent with a category other than their own.
func (i Item) Task() (domain.Task, error) {
	if i.Id == "" {
		return domain.Task{}, fmt.Errorf(`required field missing: "task"`)
	}
	cat, err := domain.AsCategory(i.Type)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", i.Id, err)
	}
	sub := domain.SubType(i.SubType)
	if c, err := domain.Classify(sub); err == nil && c != cat {
		return domain.Task{}, fmt.Errorf(
			"task %s: %w: subType %s belongs to %s, not %s", i.Id, ErrCategoryMismatch, sub, c, cat,
		)
	}

	t := domain.Task{
		Id:         i.Id,
		Label:      i.Label,
		Category:   cat,
		SubType:    sub,
		Finished:   i.Finished,
		StartedAt:  i.StartedAt,
		FinishedAt: i.FinishedAt,
	}
	if i.Payload != "" {
		t.Payload = []byte(i.Payload)
	}
	if i.Response != "" {
		t.Response = []byte(i.Response)
	}
	return t, nil
}

// ErrCategoryMismatch is returned when an item's type disagrees with the category of its subType.
var ErrCategoryMismatch = errors.New("category mismatch")

// Tasks converts all items. It fails at the first item which can not be converted.
func Tasks(items []Item) ([]domain.Task, error) {
	ret := make([]domain.Task, 0, len(items))
	for _, i := range items {
		t, err := i.Task()
		if err != nil {
			return nil, err
		}
		ret = append(ret, t)
	}
	return ret, nil
}
