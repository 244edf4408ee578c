package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/intelcomp/taskwatch/pkg/domain"
)

func TestStatusOf(t *testing.T) {
	finishedAt := time.Date(2024, 10, 11, 12, 13, 14, 0, time.UTC)

	for name, testcase := range map[string]struct {
		task     domain.Task
		expected domain.Status
	}{
		"unfinished task is PENDING": {
			task:     domain.Task{Id: "1", Category: domain.Training},
			expected: domain.Pending,
		},
		"finished task is COMPLETED": {
			task:     domain.Task{Id: "1", Category: domain.Curating, Finished: true, FinishedAt: &finishedAt},
			expected: domain.Completed,
		},
	} {
		t.Run(name, func(t *testing.T) {
			if got := domain.StatusOf(testcase.task); got != testcase.expected {
				t.Errorf("actual = %s, expected = %s", got, testcase.expected)
			}
		})
	}
}

func TestStatus_Settled(t *testing.T) {
	for status, expected := range map[domain.Status]bool{
		domain.Pending:   false,
		domain.Completed: true,
		domain.Error:     true,
	} {
		if got := status.Settled(); got != expected {
			t.Errorf("%s.Settled(): actual = %v, expected = %v", status, got, expected)
		}
	}
}

func TestAsStatus(t *testing.T) {
	for _, s := range []domain.Status{domain.Pending, domain.Completed, domain.Error} {
		got, err := domain.AsStatus(s.String())
		if err != nil || got != s {
			t.Errorf("AsStatus(%s): (%s, %v)", s, got, err)
		}
	}

	if _, err := domain.AsStatus("RUNNING"); !errors.Is(err, domain.ErrUnknown) {
		t.Errorf("unknown status: unexpected error: %v", err)
	}
}

func TestTask_Equal(t *testing.T) {
	at := time.Date(2024, 10, 11, 12, 13, 14, 0, time.UTC)
	base := domain.Task{
		Id: "1", Label: "model", Category: domain.Training, SubType: domain.RunRootTopicTraining,
		StartedAt: at, Payload: []byte(`{}`),
	}

	t.Run("same tasks are equal, even if times are in other locations", func(t *testing.T) {
		other := base
		other.StartedAt = at.In(time.FixedZone("JST", 9*60*60))
		if !base.Equal(other) {
			t.Error("they should be equal")
		}
	})

	t.Run("finished and unfinished tasks are not equal", func(t *testing.T) {
		finished := base
		finished.Finished = true
		finished.FinishedAt = &at
		if base.Equal(finished) || finished.Equal(base) {
			t.Error("they should not be equal")
		}
	})
}
