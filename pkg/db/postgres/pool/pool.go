package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// something sending query with SQL.
//
// this is extracted interface from `pgxpool.Pool`, `pgxpool.Conn` and `pgx.Tx`.
// When you need more details, see them.
type Queryer interface {
	// sending SQL Command which does not have any result rows.
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)

	// sending SQL Command which has result rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)

	// sending SQL Command which has just single result row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Pool is the subset of `pgxpool.Pool`.
type Pool interface {
	Queryer
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InTx runs f in a transaction.
//
// When f returns nil, the transaction is committed. Otherwise, it is rolled back.
func InTx(ctx context.Context, pool Pool, f func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := f(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
