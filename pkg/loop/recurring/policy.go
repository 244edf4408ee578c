package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/intelcomp/taskwatch/pkg/loop"
)

// ParsePolicy reads "forever", "forever:COOLDOWN" or "backlog".
func ParsePolicy(s string) (Policy, error) {
	typ, param, ok := strings.Cut(s, ":")
	switch typ {
	case "forever":
		if !ok || param == "" {
			return Forever(0), nil
		}

		cooldown, err := time.ParseDuration(param)
		if err != nil {
			return nil, fmt.Errorf(`failed to parse: %s as "forever:COOLDOWN": %w`, s, err)
		}
		if cooldown < 0 {
			return nil, fmt.Errorf("cooldown should not be negative: %s", s)
		}
		return Forever(cooldown), nil
	case "backlog":
		if ok {
			return nil, fmt.Errorf("backlog policy does not take paramters: %s", s)
		}
		return Backlog(), nil
	}
	return nil, fmt.Errorf("unknown policy name: %s (should be one of -- forever|backlog)", typ)
}

// Policy decides what a recurring task does after each cycle.
type Policy interface {
	// updated is true when the last cycle did something.
	Next(updated bool, err error) loop.Next
	String() string
}

// Restart immediately while there are things to do.
// Otherwise, restart after cooldown.
//
// Errors do not stop the loop; they are expected to be logged by the task.
func Forever(cooldown time.Duration) Policy {
	return forever(cooldown)
}

type forever time.Duration

func (f forever) String() string {
	return fmt.Sprintf("forever:%s", time.Duration(f).String())
}

func (f forever) Next(updated bool, err error) loop.Next {
	if updated && err == nil {
		return loop.Continue(0)
	}
	return loop.Continue(time.Duration(f))
}

// Restart immediately while there are things to do.
// Otherwise, Break(nil).
func Backlog() Policy {
	return backlog
}

type backlogPolicy struct{}

func (backlogPolicy) String() string {
	return "backlog"
}

func (backlogPolicy) Next(updated bool, err error) loop.Next {
	if err != nil {
		return loop.Break(err)
	}
	if updated {
		return loop.Continue(0)
	}
	return loop.Break(nil)
}

var backlog = backlogPolicy{}

// Task is a body of recurring loop.
//
// It returns true when it did something in this cycle, so that more backlog can remain.
type Task[T any] func(context.Context, T) (T, bool, error)

// Applied converts the recurring task into loop.Task whose next step is decided by p.
func (rt Task[T]) Applied(p Policy) loop.Task[T] {
	return func(ctx context.Context, t T) (T, loop.Next) {
		new, ok, err := rt(ctx, t)
		return new, p.Next(ok, err)
	}
}
