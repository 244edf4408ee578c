package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	apierr "github.com/intelcomp/taskwatch/pkg/api/types/errors"
	apitasks "github.com/intelcomp/taskwatch/pkg/api/types/tasks"
	"github.com/intelcomp/taskwatch/pkg/auth"
	kdb "github.com/intelcomp/taskwatch/pkg/db"
	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/workloads/k8s"
	"github.com/labstack/echo/v4"
)

func user(c echo.Context) (string, error) {
	u, ok := auth.User(c)
	if !ok {
		return "", apierr.Unauthorized("set bearer token in Authorization header", nil)
	}
	return u, nil
}

// ownerScope tells whose tasks the user can see in the category.
//
// Training tasks are private to the user who submitted them. Curating tasks are shared.
func ownerScope(c echo.Context, category domain.Category) (*string, error) {
	if category != domain.Training {
		return nil, nil
	}
	u, err := user(c)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func categoryParam(c echo.Context) (domain.Category, error) {
	cat, err := domain.AsCategory(c.QueryParam("type"))
	if err != nil {
		return "", apierr.BadRequest(`"type" should be "training" or "curating"`, err)
	}
	return cat, nil
}

// visible gets the task when the user can see it.
//
// # Returns
//
// - kdb.Record: the task
//
// - error: domain.ErrMissing when the id is malformed, unknown or the task is owned by others.
// Other errors are from the database.
func visible(c echo.Context, dbTask kdb.TaskInterface, id string) (kdb.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return kdb.Record{}, domain.ErrMissing
	}

	rec, err := dbTask.Get(c.Request().Context(), id)
	if err != nil {
		return kdb.Record{}, err
	}

	owner, err := ownerScope(c, rec.Category)
	if err != nil {
		return kdb.Record{}, err
	}
	if owner != nil && *owner != rec.Owner {
		return kdb.Record{}, domain.ErrMissing
	}
	return rec, nil
}

// visibleOr404 is visible, but converts errors into *echo.HTTPError.
func visibleOr404(c echo.Context, dbTask kdb.TaskInterface, id string) (kdb.Record, error) {
	rec, err := visible(c, dbTask, id)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, domain.ErrMissing) {
		return kdb.Record{}, apierr.NotFound()
	}
	if he := new(echo.HTTPError); errors.As(err, &he) {
		return kdb.Record{}, he
	}
	return kdb.Record{}, apierr.InternalServerError(err)
}

func RunningHandler(dbTask kdb.TaskInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		category, err := categoryParam(c)
		if err != nil {
			return err
		}
		owner, err := ownerScope(c, category)
		if err != nil {
			return err
		}

		records, err := dbTask.Find(
			c.Request().Context(),
			kdb.TaskQuery{Category: category, Owner: owner},
		)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		items := make([]apitasks.Item, 0, len(records))
		for _, r := range records {
			items = append(items, apitasks.ComposeItem(r.Task))
		}
		return c.JSON(http.StatusOK, apitasks.NewQueryResult(items))
	}
}

// StatusHandler responds status of the task.
//
// Unknown tasks are not "not found", but ERROR; they can not be tracked anymore.
func StatusHandler(dbTask kdb.TaskInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := visible(c, dbTask, c.Param(param))
		if err != nil {
			if errors.Is(err, domain.ErrMissing) {
				return c.JSON(http.StatusOK, domain.Error)
			}
			if he := new(echo.HTTPError); errors.As(err, &he) {
				return he
			}
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, domain.StatusOf(rec.Task))
	}
}

// ClearHandler removes the finished task. It is idempotent.
func ClearHandler(dbTask kdb.TaskInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param(param)
		if _, err := visible(c, dbTask, id); err != nil {
			if errors.Is(err, domain.ErrMissing) {
				return c.NoContent(http.StatusOK)
			}
			if he := new(echo.HTTPError); errors.As(err, &he) {
				return he
			}
			return apierr.InternalServerError(err)
		}

		if err := dbTask.Clear(c.Request().Context(), id); err != nil {
			return apierr.InternalServerError(err)
		}
		return c.NoContent(http.StatusOK)
	}
}

// ClearAllHandler removes all finished tasks in the category, which the user can see.
func ClearAllHandler(dbTask kdb.TaskInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		category, err := categoryParam(c)
		if err != nil {
			return err
		}
		owner, err := ownerScope(c, category)
		if err != nil {
			return err
		}

		cleared, err := dbTask.ClearAll(c.Request().Context(), category, owner)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, apitasks.NewQueryResult(cleared))
	}
}

// CancelHandler stops the task and removes it.
//
// When cluster is not nil, the k8s Job of the task (named by jobName) is deleted.
func CancelHandler(
	dbTask kdb.TaskInterface,
	cluster k8s.Cluster,
	jobName func(taskId string) string,
	param string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := visibleOr404(c, dbTask, c.Param(param))
		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		if cluster != nil && !rec.Finished {
			if err := cluster.DeleteJob(ctx, jobName(rec.Id)); err != nil && !errors.Is(err, k8s.ErrMissing) {
				return apierr.ServiceUnavailable("retry later", err)
			}
		}

		if err := dbTask.Delete(ctx, rec.Id); err != nil {
			if errors.Is(err, domain.ErrMissing) {
				// canceled by others meanwhile.
				return c.NoContent(http.StatusOK)
			}
			return apierr.InternalServerError(err)
		}
		return c.NoContent(http.StatusOK)
	}
}

func LogsHandler(dbTask kdb.TaskInterface, param string) echo.HandlerFunc {
	return itemsHandler(dbTask, param, dbTask.Logs)
}

func DocumentsHandler(dbTask kdb.TaskInterface, param string) echo.HandlerFunc {
	return itemsHandler(dbTask, param, dbTask.Documents)
}

func PUScoresHandler(dbTask kdb.TaskInterface, param string) echo.HandlerFunc {
	return itemsHandler(dbTask, param, dbTask.PUScores)
}

func itemsHandler[T any](
	dbTask kdb.TaskInterface,
	param string,
	get func(ctx context.Context, id string) ([]T, error),
) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := visibleOr404(c, dbTask, c.Param(param))
		if err != nil {
			return err
		}

		items, err := get(c.Request().Context(), rec.Id)
		if err != nil {
			if errors.Is(err, domain.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, apitasks.NewQueryResult(items))
	}
}

// PUScoreHandler responds a PU score image (png) of the task.
func PUScoreHandler(dbTask kdb.TaskInterface, param string, nameParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := visibleOr404(c, dbTask, c.Param(param))
		if err != nil {
			return err
		}

		image, err := dbTask.PUScore(c.Request().Context(), rec.Id, c.Param(nameParam))
		if err != nil {
			if errors.Is(err, domain.ErrMissing) {
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}
		return c.Blob(http.StatusOK, "image/png", image)
	}
}

// SubmitHandler registers a new task of the user.
//
// The category of the task is decided by its subType.
func SubmitHandler(dbTask kdb.TaskInterface, now func() time.Time) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, err := user(c)
		if err != nil {
			return err
		}

		ctype := c.Request().Header.Get(echo.HeaderContentType)
		if !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
			return apierr.NewErrorMessage(
				http.StatusUnsupportedMediaType, "unsupported media type",
				apierr.WithAdvice("send json with Content-Type: application/json"),
			)
		}

		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return apierr.BadRequest("request body can not be read", err)
		}
		sub := apitasks.Submission{}
		if err := json.Unmarshal(body, &sub); err != nil {
			return apierr.BadRequest("request body should be a json object with label, subType and payload", err)
		}
		if sub.Label == "" {
			return apierr.BadRequest(`"label" is required`, nil)
		}

		subtype, err := domain.AsSubType(sub.SubType)
		if err != nil {
			return apierr.BadRequest(`"subType" is unknown`, err)
		}
		category, err := domain.Classify(subtype)
		if err != nil {
			return apierr.BadRequest(`"subType" should tell an operation`, err)
		}

		task := domain.Task{
			Id:        uuid.NewString(),
			Label:     sub.Label,
			Category:  category,
			SubType:   subtype,
			StartedAt: now(),
		}
		if sub.Payload != "" {
			task.Payload = []byte(sub.Payload)
		}

		if err := dbTask.Register(c.Request().Context(), u, task); err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusCreated, apitasks.ComposeItem(task))
	}
}
