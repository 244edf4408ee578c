package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/intelcomp/taskwatch/cmd/taskd/handlers"
	httptestutil "github.com/intelcomp/taskwatch/internal/testutils/http"
	apitasks "github.com/intelcomp/taskwatch/pkg/api/types/tasks"
	"github.com/intelcomp/taskwatch/pkg/auth"
	kdb "github.com/intelcomp/taskwatch/pkg/db"
	"github.com/intelcomp/taskwatch/pkg/db/mocks"
	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/utils/try"
	"github.com/intelcomp/taskwatch/pkg/workloads/k8s"
	"github.com/labstack/echo/v4"
	kubebatch "k8s.io/api/batch/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

var base = time.Date(2024, 10, 11, 12, 13, 14, 0, time.UTC)

func record(owner string, category domain.Category, subtype domain.SubType, finished bool) kdb.Record {
	t := domain.Task{
		Id:        uuid.NewString(),
		Label:     "label",
		Category:  category,
		SubType:   subtype,
		Finished:  finished,
		StartedAt: base,
	}
	if finished {
		f := base.Add(time.Hour)
		t.FinishedAt = &f
	}
	return kdb.Record{Task: t, Owner: owner}
}

// httpStatus tells the status code of the response or the error returned from handler.
func httpStatus(t *testing.T, err error, resp int) int {
	t.Helper()
	if err == nil {
		return resp
	}
	he := new(echo.HTTPError)
	if !errors.As(err, &he) {
		t.Fatalf("unexpected error: %v", err)
	}
	return he.Code
}

func withTask(c echo.Context, id string) echo.Context {
	c.SetParamNames("taskId")
	c.SetParamValues(id)
	return c
}

func TestRunningHandler(t *testing.T) {
	type When struct {
		query   string
		records []kdb.Record
		err     error
	}
	type Then struct {
		status int
		query  kdb.TaskQuery
		items  []string
	}

	alice := "alice"

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			dbTask := mocks.NewTaskInterface()
			dbTask.Impl.Find = func(context.Context, kdb.TaskQuery) ([]kdb.Record, error) {
				return when.records, when.err
			}

			e := echo.New()
			c, resp := httptestutil.Get(e, "/api/tasks/running?"+when.query)
			c = auth.WithUser(c, alice)

			err := handlers.RunningHandler(dbTask)(c)
			if got := httpStatus(t, err, resp.Code); got != then.status {
				t.Fatalf("status: actual = %d, expected = %d", got, then.status)
			}
			if then.status == http.StatusBadRequest && dbTask.Calls.Find.Times() != 0 {
				t.Errorf("Find should not be called")
			}
			if then.status != http.StatusOK {
				return
			}

			if dbTask.Calls.Find.Times() != 1 {
				t.Fatalf("Find is called %d times", dbTask.Calls.Find.Times())
			}
			q := dbTask.Calls.Find[0]
			if q.Category != then.query.Category || (q.Owner == nil) != (then.query.Owner == nil) ||
				(q.Owner != nil && *q.Owner != *then.query.Owner) {
				t.Errorf("query: actual = %+v, expected = %+v", q, then.query)
			}

			body := apitasks.QueryResult[apitasks.Item]{}
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			ids := []string{}
			for _, i := range body.Items {
				ids = append(ids, i.Id)
			}
			if !slices.Equal(ids, then.items) || body.Count != len(then.items) {
				t.Errorf("items: actual = %v (count %d), expected = %v", ids, body.Count, then.items)
			}
		}
	}

	r1 := record(alice, domain.Training, domain.RunRootTopicTraining, false)
	r2 := record(alice, domain.Training, domain.RunRootDomainTraining, true)
	c1 := record("bob", domain.Curating, domain.FuseTopicModel, false)

	t.Run("training tasks are scoped to the user", theory(
		When{query: "type=training", records: []kdb.Record{r1, r2}},
		Then{
			status: http.StatusOK,
			query:  kdb.TaskQuery{Category: domain.Training, Owner: &alice},
			items:  []string{r1.Id, r2.Id},
		},
	))

	t.Run("curating tasks are shared", theory(
		When{query: "type=curating", records: []kdb.Record{c1}},
		Then{
			status: http.StatusOK,
			query:  kdb.TaskQuery{Category: domain.Curating},
			items:  []string{c1.Id},
		},
	))

	t.Run("no tasks are responded as empty list", theory(
		When{query: "type=curating", records: nil},
		Then{
			status: http.StatusOK,
			query:  kdb.TaskQuery{Category: domain.Curating},
			items:  []string{},
		},
	))

	t.Run("unknown type is bad request", theory(
		When{query: "type=cooking"},
		Then{status: http.StatusBadRequest},
	))

	t.Run("missing type is bad request", theory(
		When{query: ""},
		Then{status: http.StatusBadRequest},
	))

	t.Run("database error is internal server error", theory(
		When{query: "type=training", err: errors.New("fake error")},
		Then{status: http.StatusInternalServerError},
	))
}

func TestStatusHandler(t *testing.T) {
	type When struct {
		id     string
		record kdb.Record
		err    error
	}
	type Then struct {
		httpStatus int
		status     domain.Status
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			dbTask := mocks.NewTaskInterface()
			dbTask.Impl.Get = func(_ context.Context, id string) (kdb.Record, error) {
				if id != when.id {
					t.Errorf("id: actual = %s, expected = %s", id, when.id)
				}
				return when.record, when.err
			}

			e := echo.New()
			c, resp := httptestutil.Get(e, "/api/tasks/"+when.id+"/status")
			c = withTask(auth.WithUser(c, "alice"), when.id)

			err := handlers.StatusHandler(dbTask, "taskId")(c)
			if got := httpStatus(t, err, resp.Code); got != then.httpStatus {
				t.Fatalf("status code: actual = %d, expected = %d", got, then.httpStatus)
			}
			if then.httpStatus != http.StatusOK {
				return
			}

			var status string
			if err := json.Unmarshal(resp.Body.Bytes(), &status); err != nil {
				t.Fatal(err)
			}
			if status != then.status.String() {
				t.Errorf("status: actual = %s, expected = %s", status, then.status)
			}
		}
	}

	running := record("alice", domain.Training, domain.RunRootTopicTraining, false)
	finished := record("alice", domain.Training, domain.RunRootTopicTraining, true)
	others := record("bob", domain.Training, domain.RunRootTopicTraining, false)
	curating := record("bob", domain.Curating, domain.SortTopicModel, true)

	t.Run("running task is PENDING", theory(
		When{id: running.Id, record: running},
		Then{httpStatus: http.StatusOK, status: domain.Pending},
	))
	t.Run("finished task is COMPLETED", theory(
		When{id: finished.Id, record: finished},
		Then{httpStatus: http.StatusOK, status: domain.Completed},
	))
	t.Run("curating task of others is visible", theory(
		When{id: curating.Id, record: curating},
		Then{httpStatus: http.StatusOK, status: domain.Completed},
	))
	t.Run("training task of others is ERROR", theory(
		When{id: others.Id, record: others},
		Then{httpStatus: http.StatusOK, status: domain.Error},
	))
	t.Run("unknown task is ERROR", theory(
		When{id: uuid.NewString(), err: domain.ErrMissing},
		Then{httpStatus: http.StatusOK, status: domain.Error},
	))
	t.Run("malformed id is ERROR", theory(
		When{id: "not-a-uuid"},
		Then{httpStatus: http.StatusOK, status: domain.Error},
	))
	t.Run("database error is internal server error", theory(
		When{id: running.Id, err: errors.New("fake error")},
		Then{httpStatus: http.StatusInternalServerError},
	))
}

func TestClearHandler(t *testing.T) {
	type When struct {
		record kdb.Record
		getErr error
	}
	type Then struct {
		cleared bool
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			dbTask := mocks.NewTaskInterface()
			dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) {
				return when.record, when.getErr
			}
			dbTask.Impl.Clear = func(context.Context, string) error { return nil }

			id := when.record.Id
			if id == "" {
				id = uuid.NewString()
			}

			e := echo.New()
			c, resp := httptestutil.Get(e, "/api/tasks/"+id+"/clear")
			c = withTask(auth.WithUser(c, "alice"), id)

			err := handlers.ClearHandler(dbTask, "taskId")(c)
			if got := httpStatus(t, err, resp.Code); got != http.StatusOK {
				t.Fatalf("status code: actual = %d, expected = 200", got)
			}

			if then.cleared {
				if !slices.Equal(dbTask.Calls.Clear, mocks.CallLog[string]{id}) {
					t.Errorf("Clear: actual = %v, expected = [%s]", dbTask.Calls.Clear, id)
				}
			} else if dbTask.Calls.Clear.Times() != 0 {
				t.Errorf("Clear should not be called: %v", dbTask.Calls.Clear)
			}
		}
	}

	t.Run("visible task is cleared", theory(
		When{record: record("alice", domain.Training, domain.RunRootTopicTraining, true)},
		Then{cleared: true},
	))
	t.Run("clearing unknown task is ok, and does nothing", theory(
		When{getErr: domain.ErrMissing},
		Then{cleared: false},
	))
	t.Run("clearing training task of others is ok, and does nothing", theory(
		When{record: record("bob", domain.Training, domain.RunRootTopicTraining, true)},
		Then{cleared: false},
	))
}

func TestClearAllHandler(t *testing.T) {
	t.Run("it clears finished tasks which the user can see", func(t *testing.T) {
		for category, wantOwner := range map[domain.Category]bool{
			domain.Training: true,
			domain.Curating: false,
		} {
			dbTask := mocks.NewTaskInterface()
			dbTask.Impl.ClearAll = func(context.Context, domain.Category, *string) ([]string, error) {
				return []string{"a", "b"}, nil
			}

			e := echo.New()
			c, resp := httptestutil.Get(e, "/api/tasks/clear-all?type="+category.String())
			c = auth.WithUser(c, "alice")

			if err := handlers.ClearAllHandler(dbTask)(c); err != nil {
				t.Fatal(err)
			}
			if resp.Code != http.StatusOK {
				t.Errorf("%s: status code: actual = %d", category, resp.Code)
			}

			call := dbTask.Calls.ClearAll[0]
			if call.Category != category {
				t.Errorf("%s: category: actual = %s", category, call.Category)
			}
			if wantOwner && (call.Owner == nil || *call.Owner != "alice") {
				t.Errorf("%s: owner should be alice: %v", category, call.Owner)
			}
			if !wantOwner && call.Owner != nil {
				t.Errorf("%s: owner should be nil: %s", category, *call.Owner)
			}

			body := apitasks.QueryResult[string]{}
			try.To(struct{}{}, json.Unmarshal(resp.Body.Bytes(), &body)).OrFatal(t)
			if !slices.Equal(body.Items, []string{"a", "b"}) {
				t.Errorf("%s: body: actual = %+v", category, body)
			}
		}
	})
}

func TestCancelHandler(t *testing.T) {
	jobName := func(id string) string { return "task-" + id }

	t.Run("it deletes the job and the task", func(t *testing.T) {
		rec := record("alice", domain.Training, domain.RunRootTopicTraining, false)

		dbTask := mocks.NewTaskInterface()
		dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) { return rec, nil }
		dbTask.Impl.Delete = func(context.Context, string) error { return nil }

		clientset := fake.NewSimpleClientset(&kubebatch.Job{
			ObjectMeta: kubeapimeta.ObjectMeta{Name: jobName(rec.Id), Namespace: "ns"},
		})
		cluster := k8s.AttachCluster(k8s.WrapK8sClient(clientset), "ns")

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/cancel")
		c = withTask(auth.WithUser(c, "alice"), rec.Id)

		if err := handlers.CancelHandler(dbTask, cluster, jobName, "taskId")(c); err != nil {
			t.Fatal(err)
		}
		if resp.Code != http.StatusOK {
			t.Errorf("status code: actual = %d", resp.Code)
		}
		if !slices.Equal(dbTask.Calls.Delete, mocks.CallLog[string]{rec.Id}) {
			t.Errorf("Delete: actual = %v", dbTask.Calls.Delete)
		}
		if _, err := cluster.GetJob(context.Background(), jobName(rec.Id)); !errors.Is(err, k8s.ErrMissing) {
			t.Errorf("job is not deleted: %v", err)
		}
	})

	t.Run("task without job is deleted too", func(t *testing.T) {
		rec := record("alice", domain.Curating, domain.FuseTopicModel, false)

		dbTask := mocks.NewTaskInterface()
		dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) { return rec, nil }
		dbTask.Impl.Delete = func(context.Context, string) error { return nil }

		cluster := k8s.AttachCluster(k8s.WrapK8sClient(fake.NewSimpleClientset()), "ns")

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/cancel")
		c = withTask(auth.WithUser(c, "alice"), rec.Id)

		if err := handlers.CancelHandler(dbTask, cluster, jobName, "taskId")(c); err != nil {
			t.Fatal(err)
		}
		if resp.Code != http.StatusOK {
			t.Errorf("status code: actual = %d", resp.Code)
		}
		if dbTask.Calls.Delete.Times() != 1 {
			t.Errorf("Delete is called %d times", dbTask.Calls.Delete.Times())
		}
	})

	t.Run("without cluster, it deletes only the task", func(t *testing.T) {
		rec := record("alice", domain.Curating, domain.FuseTopicModel, false)

		dbTask := mocks.NewTaskInterface()
		dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) { return rec, nil }
		dbTask.Impl.Delete = func(context.Context, string) error { return nil }

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/cancel")
		c = withTask(auth.WithUser(c, "alice"), rec.Id)

		if err := handlers.CancelHandler(dbTask, nil, jobName, "taskId")(c); err != nil {
			t.Fatal(err)
		}
		if dbTask.Calls.Delete.Times() != 1 {
			t.Errorf("Delete is called %d times", dbTask.Calls.Delete.Times())
		}
	})

	t.Run("canceling unknown task is not found", func(t *testing.T) {
		dbTask := mocks.NewTaskInterface()
		dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) {
			return kdb.Record{}, domain.ErrMissing
		}

		id := uuid.NewString()
		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+id+"/cancel")
		c = withTask(auth.WithUser(c, "alice"), id)

		err := handlers.CancelHandler(dbTask, nil, jobName, "taskId")(c)
		if got := httpStatus(t, err, resp.Code); got != http.StatusNotFound {
			t.Errorf("status code: actual = %d", got)
		}
		if dbTask.Calls.Delete.Times() != 0 {
			t.Errorf("Delete should not be called")
		}
	})
}

func TestLogsHandler(t *testing.T) {
	t.Run("it responds log lines", func(t *testing.T) {
		rec := record("alice", domain.Training, domain.RunRootTopicTraining, true)

		dbTask := mocks.NewTaskInterface()
		dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) { return rec, nil }
		dbTask.Impl.Logs = func(context.Context, string) ([]string, error) {
			return []string{"line 1", "line 2"}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/logs")
		c = withTask(auth.WithUser(c, "alice"), rec.Id)

		if err := handlers.LogsHandler(dbTask, "taskId")(c); err != nil {
			t.Fatal(err)
		}
		body := apitasks.QueryResult[string]{}
		try.To(struct{}{}, json.Unmarshal(resp.Body.Bytes(), &body)).OrFatal(t)
		if !slices.Equal(body.Items, []string{"line 1", "line 2"}) {
			t.Errorf("logs: actual = %v", body.Items)
		}
	})

	t.Run("logs of training task of others are not found", func(t *testing.T) {
		rec := record("bob", domain.Training, domain.RunRootTopicTraining, true)

		dbTask := mocks.NewTaskInterface()
		dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) { return rec, nil }

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/logs")
		c = withTask(auth.WithUser(c, "alice"), rec.Id)

		err := handlers.LogsHandler(dbTask, "taskId")(c)
		if got := httpStatus(t, err, resp.Code); got != http.StatusNotFound {
			t.Errorf("status code: actual = %d", got)
		}
		if dbTask.Calls.Logs.Times() != 0 {
			t.Errorf("Logs should not be called")
		}
	})
}

func TestDocumentsHandler(t *testing.T) {
	t.Run("it responds documents as they are", func(t *testing.T) {
		rec := record("bob", domain.Curating, domain.ClassifyDomainModel, true)

		dbTask := mocks.NewTaskInterface()
		dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) { return rec, nil }
		dbTask.Impl.Documents = func(context.Context, string) ([]json.RawMessage, error) {
			return []json.RawMessage{json.RawMessage(`{"id":"doc-1","score":0.5}`)}, nil
		}

		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/documents")
		c = withTask(auth.WithUser(c, "alice"), rec.Id)

		if err := handlers.DocumentsHandler(dbTask, "taskId")(c); err != nil {
			t.Fatal(err)
		}
		body := apitasks.QueryResult[struct {
			Id    string  `json:"id"`
			Score float64 `json:"score"`
		}]{}
		try.To(struct{}{}, json.Unmarshal(resp.Body.Bytes(), &body)).OrFatal(t)
		if len(body.Items) != 1 || body.Items[0].Id != "doc-1" || body.Items[0].Score != 0.5 {
			t.Errorf("documents: actual = %+v", body.Items)
		}
	})
}

func TestPUScoreHandlers(t *testing.T) {
	rec := record("alice", domain.Training, domain.RunRootDomainTraining, true)

	newDB := func() *mocks.TaskInterface {
		dbTask := mocks.NewTaskInterface()
		dbTask.Impl.Get = func(context.Context, string) (kdb.Record, error) { return rec, nil }
		dbTask.Impl.PUScores = func(context.Context, string) ([]string, error) {
			return []string{"a.png"}, nil
		}
		dbTask.Impl.PUScore = func(_ context.Context, _ string, name string) ([]byte, error) {
			if name != "a.png" {
				return nil, domain.ErrMissing
			}
			return []byte("\x89PNG"), nil
		}
		return dbTask
	}

	t.Run("it lists names of images", func(t *testing.T) {
		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/pu-scores/all")
		c = withTask(auth.WithUser(c, "alice"), rec.Id)

		if err := handlers.PUScoresHandler(newDB(), "taskId")(c); err != nil {
			t.Fatal(err)
		}
		body := apitasks.QueryResult[string]{}
		try.To(struct{}{}, json.Unmarshal(resp.Body.Bytes(), &body)).OrFatal(t)
		if !slices.Equal(body.Items, []string{"a.png"}) {
			t.Errorf("names: actual = %v", body.Items)
		}
	})

	t.Run("it responds an image as png", func(t *testing.T) {
		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/pu-scores/a.png")
		c.SetParamNames("taskId", "name")
		c.SetParamValues(rec.Id, "a.png")
		c = auth.WithUser(c, "alice")

		if err := handlers.PUScoreHandler(newDB(), "taskId", "name")(c); err != nil {
			t.Fatal(err)
		}
		if ctype := resp.Header().Get("Content-Type"); ctype != "image/png" {
			t.Errorf("content type: actual = %s", ctype)
		}
		if resp.Body.String() != "\x89PNG" {
			t.Errorf("body: actual = %q", resp.Body.String())
		}
	})

	t.Run("unknown image is not found", func(t *testing.T) {
		e := echo.New()
		c, resp := httptestutil.Get(e, "/api/tasks/"+rec.Id+"/pu-scores/b.png")
		c.SetParamNames("taskId", "name")
		c.SetParamValues(rec.Id, "b.png")
		c = auth.WithUser(c, "alice")

		err := handlers.PUScoreHandler(newDB(), "taskId", "name")(c)
		if got := httpStatus(t, err, resp.Code); got != http.StatusNotFound {
			t.Errorf("status code: actual = %d", got)
		}
	})
}

func TestSubmitHandler(t *testing.T) {
	type When struct {
		contentType string
		body        string
	}
	type Then struct {
		status   int
		category domain.Category
		subtype  domain.SubType
	}

	now := func() time.Time { return base }

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			dbTask := mocks.NewTaskInterface()
			dbTask.Impl.Register = func(context.Context, string, domain.Task) error { return nil }

			e := echo.New()
			c, resp := httptestutil.Post(
				e, "/api/tasks", strings.NewReader(when.body),
				httptestutil.ContentType(when.contentType),
			)
			c = auth.WithUser(c, "alice")

			err := handlers.SubmitHandler(dbTask, now)(c)
			if got := httpStatus(t, err, resp.Code); got != then.status {
				t.Fatalf("status code: actual = %d, expected = %d", got, then.status)
			}
			if then.status != http.StatusCreated {
				if dbTask.Calls.Register.Times() != 0 {
					t.Errorf("Register should not be called")
				}
				return
			}

			if dbTask.Calls.Register.Times() != 1 {
				t.Fatalf("Register is called %d times", dbTask.Calls.Register.Times())
			}
			call := dbTask.Calls.Register[0]
			if call.Owner != "alice" {
				t.Errorf("owner: actual = %s", call.Owner)
			}
			if call.Task.Category != then.category || call.Task.SubType != then.subtype {
				t.Errorf("task: actual = %+v", call.Task)
			}
			if _, err := uuid.Parse(call.Task.Id); err != nil {
				t.Errorf("id is not uuid: %s", call.Task.Id)
			}
			if !call.Task.StartedAt.Equal(base) || call.Task.Finished {
				t.Errorf("task: actual = %+v", call.Task)
			}

			item := apitasks.Item{}
			try.To(struct{}{}, json.Unmarshal(resp.Body.Bytes(), &item)).OrFatal(t)
			if !item.Equal(apitasks.ComposeItem(call.Task)) {
				t.Errorf("response: actual = %+v, expected = %+v", item, apitasks.ComposeItem(call.Task))
			}
		}
	}

	t.Run("training submission is registered as training", theory(
		When{
			contentType: "application/json",
			body:        `{"label":"model-1","subType":"RUN_ROOT_TOPIC_TRAINING","payload":"{}"}`,
		},
		Then{status: http.StatusCreated, category: domain.Training, subtype: domain.RunRootTopicTraining},
	))

	t.Run("curating submission is registered as curating", theory(
		When{
			contentType: "application/json; charset=utf-8",
			body:        `{"label":"model-1","subType":"EVALUATE_DOMAIN_MODEL"}`,
		},
		Then{status: http.StatusCreated, category: domain.Curating, subtype: domain.EvaluateDomainModel},
	))

	t.Run("EMPTY subtype is bad request", theory(
		When{contentType: "application/json", body: `{"label":"model-1","subType":"EMPTY"}`},
		Then{status: http.StatusBadRequest},
	))

	t.Run("unknown subtype is bad request", theory(
		When{contentType: "application/json", body: `{"label":"model-1","subType":"BAKE_A_CAKE"}`},
		Then{status: http.StatusBadRequest},
	))

	t.Run("missing label is bad request", theory(
		When{contentType: "application/json", body: `{"subType":"RUN_ROOT_TOPIC_TRAINING"}`},
		Then{status: http.StatusBadRequest},
	))

	t.Run("broken json is bad request", theory(
		When{contentType: "application/json", body: `{"label":`},
		Then{status: http.StatusBadRequest},
	))

	t.Run("non json is unsupported media type", theory(
		When{contentType: "text/plain", body: `label=model-1`},
		Then{status: http.StatusUnsupportedMediaType},
	))
}
