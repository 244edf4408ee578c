package testenv

import (
	"context"
	"os"
	"testing"

	kpool "github.com/intelcomp/taskwatch/pkg/db/postgres/pool"
	kpgschema "github.com/intelcomp/taskwatch/pkg/db/postgres/schema"
	"github.com/jackc/pgx/v4/pgxpool"
)

// EnvDatabaseURL is the name of environment variable telling the database for tests.
const EnvDatabaseURL = "TASKWATCH_TEST_DB"

// PoolBroaker is a interface to get a pool.
type PoolBroaker interface {
	// GetPool returns a pool.
	//
	// Tables are cleaned up before returning and after t.
	GetPool(ctx context.Context, t *testing.T) kpool.Pool
}

type pg struct {
	pool *pgxpool.Pool
}

func (p *pg) GetPool(ctx context.Context, t *testing.T) kpool.Pool {
	t.Cleanup(func() {
		t.Helper()
		ClearTables(context.Background(), p.pool, t)
	})

	ClearTables(ctx, p.pool, t)
	return p.pool
}

// NewPoolBroaker returns a PoolBroaker connecting to the database at $TASKWATCH_TEST_DB.
//
// When the variable is empty, t is skipped.
//
// The schema is upgraded to the latest before returning.
func NewPoolBroaker(ctx context.Context, t *testing.T) PoolBroaker {
	t.Helper()

	url := os.Getenv(EnvDatabaseURL)
	if url == "" {
		t.Skipf("%s is not set. skipped.", EnvDatabaseURL)
	}

	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if err := kpgschema.New(pool).Upgrade(ctx); err != nil {
		t.Fatal(err)
	}

	return &pg{pool: pool}
}

func ClearTables(ctx context.Context, pool kpool.Queryer, t *testing.T) {
	t.Helper()
	if _, err := pool.Exec(
		ctx, `TRUNCATE "task", "task_document", "task_pu_score" CASCADE`,
	); err != nil {
		t.Fatal(err)
	}
}
