package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	kdb "github.com/intelcomp/taskwatch/pkg/db"
	kpgerr "github.com/intelcomp/taskwatch/pkg/db/postgres/errors"
	kpool "github.com/intelcomp/taskwatch/pkg/db/postgres/pool"
	"github.com/intelcomp/taskwatch/pkg/domain"
	xe "github.com/intelcomp/taskwatch/pkg/errors"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

type taskPG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.TaskInterface {
	return &taskPG{pool: pool}
}

const recordColumns = `"task_id"::text, "owner", "label", "category", "subtype", "finished", "started_at", "finished_at", "payload", "response"`

func scanRecord(row pgx.Row) (kdb.Record, error) {
	var (
		rec        kdb.Record
		category   string
		subtype    string
		finishedAt pgtype.Timestamptz
		payload    pgtype.Bytea
		response   pgtype.Bytea
	)
	if err := row.Scan(
		&rec.Id, &rec.Owner, &rec.Label, &category, &subtype,
		&rec.Finished, &rec.StartedAt, &finishedAt, &payload, &response,
	); err != nil {
		return kdb.Record{}, err
	}

	c, err := domain.AsCategory(category)
	if err != nil {
		return kdb.Record{}, xe.Wrap(err)
	}
	rec.Category = c
	rec.SubType = domain.SubType(subtype)

	if finishedAt.Status == pgtype.Present {
		t := finishedAt.Time
		rec.FinishedAt = &t
	}
	if payload.Status == pgtype.Present {
		rec.Payload = payload.Bytes
	}
	if response.Status == pgtype.Present {
		rec.Response = response.Bytes
	}
	return rec, nil
}

func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{Time: *t, Status: pgtype.Present}
}

func (m *taskPG) Register(ctx context.Context, owner string, task domain.Task) error {
	if _, err := m.pool.Exec(
		ctx,
		`
		INSERT INTO "task"
			("task_id", "owner", "label", "category", "subtype", "finished", "started_at", "finished_at", "payload", "response")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
		task.Id, owner, task.Label, string(task.Category), string(task.SubType),
		task.Finished, task.StartedAt, timestamptz(task.FinishedAt), task.Payload, task.Response,
	); err != nil {
		if e := kpgerr.Classify(err, "task", task.Id); e != err {
			return e
		}
		return xe.Wrap(err)
	}
	return nil
}

func (m *taskPG) Get(ctx context.Context, id string) (kdb.Record, error) {
	rec, err := scanRecord(m.pool.QueryRow(
		ctx,
		`SELECT `+recordColumns+` FROM "task" WHERE "task_id" = $1`,
		id,
	))
	if err != nil {
		return kdb.Record{}, missingOr(err, id)
	}
	return rec, nil
}

func (m *taskPG) Find(ctx context.Context, query kdb.TaskQuery) ([]kdb.Record, error) {
	rows, err := m.pool.Query(
		ctx,
		`
		SELECT `+recordColumns+` FROM "task"
		WHERE "category" = $1
			AND ($2::varchar IS NULL OR "owner" = $2)
			AND (NOT $3 OR NOT "finished")
		ORDER BY "started_at", "task_id"
		`,
		string(query.Category), query.Owner, query.UnfinishedOnly,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	records := []kdb.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return records, nil
}

func (m *taskPG) Unfinished(ctx context.Context) ([]string, error) {
	rows, err := m.pool.Query(
		ctx,
		`SELECT "task_id"::text FROM "task" WHERE NOT "finished" ORDER BY "started_at", "task_id"`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return collectStrings(rows)
}

func (m *taskPG) Finish(ctx context.Context, id string, outcome kdb.Outcome) error {
	finishedAt := outcome.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	logs := pgtype.TextArray{}
	lines := outcome.Logs
	if lines == nil {
		lines = []string{}
	}
	if err := logs.Set(lines); err != nil {
		return xe.Wrap(err)
	}

	return kpool.InTx(ctx, m.pool, func(tx pgx.Tx) error {
		var finished bool
		if err := tx.QueryRow(
			ctx,
			`SELECT "finished" FROM "task" WHERE "task_id" = $1 FOR UPDATE`,
			id,
		).Scan(&finished); err != nil {
			return missingOr(err, id)
		}
		if finished {
			return fmt.Errorf("%w: %s has been finished already", kdb.ErrInvalidState, id)
		}

		if _, err := tx.Exec(
			ctx,
			`
			UPDATE "task"
			SET "finished" = true, "finished_at" = $2, "response" = $3, "logs" = $4
			WHERE "task_id" = $1
			`,
			id, finishedAt, outcome.Response, logs,
		); err != nil {
			return xe.Wrap(err)
		}

		for seq, doc := range outcome.Documents {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO "task_document" ("task_id", "seq", "body") VALUES ($1, $2, $3::jsonb)`,
				id, seq, string(doc),
			); err != nil {
				return xe.Wrap(err)
			}
		}
		for name, image := range outcome.PUScores {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO "task_pu_score" ("task_id", "name", "image") VALUES ($1, $2, $3)`,
				id, name, image,
			); err != nil {
				return xe.Wrap(err)
			}
		}
		return nil
	})
}

func (m *taskPG) Clear(ctx context.Context, id string) error {
	if _, err := m.pool.Exec(
		ctx,
		`DELETE FROM "task" WHERE "task_id" = $1 AND "finished"`,
		id,
	); err != nil {
		if errors.Is(kpgerr.Classify(err, "task", id), domain.ErrMissing) {
			return nil
		}
		return xe.Wrap(err)
	}
	return nil
}

func (m *taskPG) ClearAll(ctx context.Context, category domain.Category, owner *string) ([]string, error) {
	rows, err := m.pool.Query(
		ctx,
		`
		DELETE FROM "task"
		WHERE "category" = $1 AND "finished" AND ($2::varchar IS NULL OR "owner" = $2)
		RETURNING "task_id"::text
		`,
		string(category), owner,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return collectStrings(rows)
}

func (m *taskPG) Delete(ctx context.Context, id string) error {
	tag, err := m.pool.Exec(ctx, `DELETE FROM "task" WHERE "task_id" = $1`, id)
	if err != nil {
		return missingOr(err, id)
	}
	if tag.RowsAffected() == 0 {
		return kpgerr.Missing{Table: "task", Identity: id}
	}
	return nil
}

func (m *taskPG) Logs(ctx context.Context, id string) ([]string, error) {
	var logs pgtype.TextArray
	if err := m.pool.QueryRow(
		ctx, `SELECT "logs" FROM "task" WHERE "task_id" = $1`, id,
	).Scan(&logs); err != nil {
		return nil, missingOr(err, id)
	}

	lines := []string{}
	if logs.Status == pgtype.Present {
		if err := logs.AssignTo(&lines); err != nil {
			return nil, xe.Wrap(err)
		}
	}
	return lines, nil
}

func (m *taskPG) Documents(ctx context.Context, id string) ([]json.RawMessage, error) {
	if err := m.exists(ctx, id); err != nil {
		return nil, err
	}

	rows, err := m.pool.Query(
		ctx,
		`SELECT "body"::text FROM "task_document" WHERE "task_id" = $1 ORDER BY "seq"`,
		id,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	bodies, err := collectStrings(rows)
	if err != nil {
		return nil, err
	}

	docs := make([]json.RawMessage, 0, len(bodies))
	for _, b := range bodies {
		docs = append(docs, json.RawMessage(b))
	}
	return docs, nil
}

func (m *taskPG) PUScores(ctx context.Context, id string) ([]string, error) {
	if err := m.exists(ctx, id); err != nil {
		return nil, err
	}

	rows, err := m.pool.Query(
		ctx,
		`SELECT "name" FROM "task_pu_score" WHERE "task_id" = $1 ORDER BY "name"`,
		id,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return collectStrings(rows)
}

func (m *taskPG) PUScore(ctx context.Context, id string, name string) ([]byte, error) {
	var image pgtype.Bytea
	if err := m.pool.QueryRow(
		ctx,
		`SELECT "image" FROM "task_pu_score" WHERE "task_id" = $1 AND "name" = $2`,
		id, name,
	).Scan(&image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kpgerr.Missing{Table: "task_pu_score", Identity: id + "/" + name}
		}
		return nil, missingOr(err, id)
	}
	return image.Bytes, nil
}

func (m *taskPG) exists(ctx context.Context, id string) error {
	var found string
	if err := m.pool.QueryRow(
		ctx, `SELECT "task_id"::text FROM "task" WHERE "task_id" = $1`, id,
	).Scan(&found); err != nil {
		return missingOr(err, id)
	}
	return nil
}

// missingOr returns Missing when err tells no rows found for the task id.
// Otherwise, returns err with caller.
func missingOr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return kpgerr.Missing{Table: "task", Identity: id}
	}
	if e := kpgerr.Classify(err, "task", id); e != err {
		return e
	}
	return xe.Wrap(err)
}

func collectStrings(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, xe.Wrap(err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return values, nil
}
