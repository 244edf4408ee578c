package context

import (
	"context"
	"testing"
	"time"
)

// WithTest wraps ctx with deadline of the test.
//
// The deadline is 1 second before test's deadline, to be able to clean-up resources.
// The context is canceled when the test is finished.
func WithTest(ctx context.Context, t *testing.T) context.Context {
	if deadline, ok := t.Deadline(); ok {
		dctx, cancel := context.WithDeadline(ctx, deadline.Add(-time.Second))
		t.Cleanup(cancel)
		return dctx
	}
	cctx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	return cctx
}
