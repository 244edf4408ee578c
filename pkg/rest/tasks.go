package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	apitasks "github.com/intelcomp/taskwatch/pkg/api/types/tasks"
	"github.com/intelcomp/taskwatch/pkg/domain"
)

func (c *taskClient) get(ctx context.Context, path ...string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath(path...), nil)
	if err != nil {
		return nil, err
	}
	return c.httpclient.Do(req)
}

func (c *taskClient) Running(ctx context.Context, category domain.Category) ([]domain.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("tasks", "running"), nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = url.Values{"type": []string{category.String()}}.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := apitasks.QueryResult[apitasks.Item]{}
	if err := unmarshalJsonResponse(
		resp, &result,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot list %s tasks", category),
			Status5xx: "server error",
		},
	); err != nil {
		return nil, err
	}

	// unreadable items are skipped. tasks of other categories are kept for the reconciler to report.
	tasks := make([]domain.Task, 0, len(result.Items))
	for _, i := range result.Items {
		t, err := i.Task()
		if err != nil {
			c.logger.Printf("skip a task in %s snapshot: %s", category, err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (c *taskClient) Status(ctx context.Context, taskId string) (domain.Status, error) {
	resp, err := c.get(ctx, "tasks", url.PathEscape(taskId), "status")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var status string
	if err := unmarshalJsonResponse(
		resp, &status,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot get status of task %s", taskId),
			Status5xx: "server error",
		},
	); err != nil {
		return "", err
	}
	return domain.AsStatus(status)
}

func (c *taskClient) Clear(ctx context.Context, taskId string) error {
	resp, err := c.get(ctx, "tasks", url.PathEscape(taskId), "clear")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot clear task %s", taskId),
			Status5xx: "server error",
		},
	)
}

func (c *taskClient) ClearAll(ctx context.Context, category domain.Category) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("tasks", "clear-all"), nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = url.Values{"type": []string{category.String()}}.Encode()

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot clear %s tasks", category),
			Status5xx: "server error",
		},
	)
}

func (c *taskClient) Cancel(ctx context.Context, taskId string) error {
	resp, err := c.get(ctx, "tasks", url.PathEscape(taskId), "cancel")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("cannot cancel task %s", taskId),
			Status5xx: "server error",
		},
	)
}

func (c *taskClient) Logs(ctx context.Context, taskId string) ([]string, error) {
	return getItems[string](ctx, c, fmt.Sprintf("cannot get logs of task %s", taskId), "tasks", url.PathEscape(taskId), "logs")
}

func (c *taskClient) Documents(ctx context.Context, taskId string) ([]json.RawMessage, error) {
	return getItems[json.RawMessage](ctx, c, fmt.Sprintf("cannot get documents of task %s", taskId), "tasks", url.PathEscape(taskId), "documents")
}

func (c *taskClient) PUScores(ctx context.Context, taskId string) ([]string, error) {
	return getItems[string](ctx, c, fmt.Sprintf("cannot get pu-scores of task %s", taskId), "tasks", url.PathEscape(taskId), "pu-scores", "all")
}

func getItems[T any](ctx context.Context, c *taskClient, message string, path ...string) ([]T, error) {
	resp, err := c.get(ctx, path...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := apitasks.QueryResult[T]{}
	if err := unmarshalJsonResponse(
		resp, &result,
		MessageFor{
			Status4xx: message,
			Status5xx: "server error",
		},
	); err != nil {
		return nil, err
	}
	if result.Items == nil {
		return []T{}, nil
	}
	return result.Items, nil
}

func (c *taskClient) PUScore(ctx context.Context, taskId string, name string) ([]byte, error) {
	resp, err := c.get(ctx, "tasks", url.PathEscape(taskId), "pu-scores", url.PathEscape(name))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("pu-score %s of task %s is not found", name, taskId),
			Status5xx: "server error",
		},
	)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (c *taskClient) Submit(ctx context.Context, submission apitasks.Submission) (domain.Task, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return domain.Task{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apipath("tasks"), bytes.NewReader(body))
	if err != nil {
		return domain.Task{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return domain.Task{}, err
	}
	defer resp.Body.Close()

	item := apitasks.Item{}
	if err := unmarshalJsonResponse(
		resp, &item,
		MessageFor{
			Status4xx: "cannot submit the task",
			Status5xx: "server error",
		},
	); err != nil {
		return domain.Task{}, err
	}
	return item.Task()
}
