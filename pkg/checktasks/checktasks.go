// Package checktasks finishes tasks whose k8s Job has been done.
package checktasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/intelcomp/taskwatch/pkg/db"
	"github.com/intelcomp/taskwatch/pkg/loop/recurring"
	"github.com/intelcomp/taskwatch/pkg/utils/logs"
	"github.com/intelcomp/taskwatch/pkg/workloads/k8s"
)

// Report tells what the last iteration has done.
type Report struct {
	// number of unfinished tasks examined.
	Checked int

	// ids of tasks finished in the iteration.
	Finished []string

	// ids of tasks whose job is not found.
	Orphans []string
}

func Seed() Report {
	return Report{}
}

// Result is stored as the response of tasks finished by this loop.
type Result struct {
	Job    string        `json:"job"`
	Status k8s.JobStatus `json:"status"`
}

// JobName tells the name of k8s Job running the task.
func JobName(prefix string, taskId string) string {
	return prefix + taskId
}

// Task checks every unfinished task against its k8s Job.
//
// - Succeeded or Failed job: the task is finished with logs of the job, and the job is deleted.
//
// - Pending or Running job: nothing happens.
//
// - missing job: nothing happens. The task is reported as an orphan.
//
// It is "updated" when at least one task is finished.
// Errors on each task do not stop checking others; they are joined and returned.
func Task(
	logger *log.Logger,
	tasks db.TaskInterface,
	cluster k8s.Cluster,
	jobPrefix string,
) recurring.Task[Report] {
	logger = logs.ByLogger(logger)
	return func(ctx context.Context, _ Report) (Report, bool, error) {
		report := Report{}

		ids, err := tasks.Unfinished(ctx)
		if err != nil {
			logger.Printf("failed to list unfinished tasks: %s", err)
			return report, false, err
		}

		errs := []error{}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}
			report.Checked += 1

			finished, err := check(ctx, logger, tasks, cluster, JobName(jobPrefix, id), id)
			if errors.Is(err, k8s.ErrMissing) {
				report.Orphans = append(report.Orphans, id)
				continue
			}
			if err != nil {
				logger.Printf("task %s: %s", id, err)
				errs = append(errs, fmt.Errorf("task %s: %w", id, err))
				continue
			}
			if finished {
				report.Finished = append(report.Finished, id)
			}
		}

		return report, 0 < len(report.Finished), errors.Join(errs...)
	}
}

func check(
	ctx context.Context,
	logger *log.Logger,
	tasks db.TaskInterface,
	cluster k8s.Cluster,
	jobName string,
	id string,
) (bool, error) {
	job, err := cluster.GetJob(ctx, jobName)
	if err != nil {
		return false, err
	}

	status := job.Status()
	if !status.Done() {
		return false, nil
	}

	lines, err := job.Log(ctx)
	if err != nil {
		// logs are best effort; the job is done anyway.
		logger.Printf("task %s: failed to read logs of job %s: %s", id, jobName, err)
		lines = []string{}
	}

	response, err := json.Marshal(Result{Job: jobName, Status: status})
	if err != nil {
		return false, err
	}

	if err := tasks.Finish(ctx, id, db.Outcome{
		FinishedAt: time.Now(),
		Response:   response,
		Logs:       lines,
	}); err != nil {
		if errors.Is(err, db.ErrInvalidState) {
			// finished by others meanwhile.
			return false, nil
		}
		return false, err
	}
	logger.Printf("task %s: finished (job %s is %s)", id, jobName, status)

	if err := cluster.DeleteJob(ctx, jobName); err != nil && !errors.Is(err, k8s.ErrMissing) {
		logger.Printf("task %s: failed to delete job %s: %s", id, jobName, err)
	}
	return true, nil
}
