package tracker

import (
	"context"
	"time"

	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/utils/retry"
)

// StatusGetter tells the status of a task.
type StatusGetter interface {
	Status(ctx context.Context, taskId string) (domain.Status, error)
}

// WatchStatus polls the status of the task until it is settled (Completed or Error).
//
// The status is fetched immediately, and then every interval.
// It returns the settled status, or the first error of fetching or of ctx.
func WatchStatus(ctx context.Context, client StatusGetter, taskId string, interval time.Duration) (domain.Status, error) {
	return retry.Blocking(
		ctx, retry.StaticBackoff(interval),
		func() (domain.Status, error) {
			status, err := client.Status(ctx, taskId)
			if err != nil {
				return "", err
			}
			if !status.Settled() {
				return status, retry.ErrRetry
			}
			return status, nil
		},
	)
}
