package postgres

import (
	"context"
	"fmt"

	kdb "github.com/intelcomp/taskwatch/pkg/db"
	kpgschema "github.com/intelcomp/taskwatch/pkg/db/postgres/schema"
	kpgtask "github.com/intelcomp/taskwatch/pkg/db/postgres/task"
	xe "github.com/intelcomp/taskwatch/pkg/errors"
	"github.com/jackc/pgx/v4/pgxpool"
)

type taskDBPostgres struct {
	pool   *pgxpool.Pool
	tasks  kdb.TaskInterface
	schema kdb.SchemaInterface
}

type Config struct {
	// when true, New upgrades the schema to the latest.
	// Otherwise, New fails if the schema is outdated.
	UpgradeSchema bool
}

func DefaultConfig() Config {
	return Config{}
}

type Option func(*Config) *Config

func WithSchemaUpgrade() Option {
	return func(c *Config) *Config {
		c.UpgradeSchema = true
		return c
	}
}

func New(
	ctx context.Context,
	url string,
	options ...Option,
) (kdb.Database, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}

	schema := kpgschema.New(pool)
	if err := prepareSchema(ctx, schema, c.UpgradeSchema); err != nil {
		pool.Close()
		return nil, err
	}

	return &taskDBPostgres{
		pool:   pool,
		tasks:  kpgtask.New(pool),
		schema: schema,
	}, nil
}

func prepareSchema(ctx context.Context, schema kdb.SchemaInterface, upgrade bool) error {
	if upgrade {
		if err := schema.Upgrade(ctx); err != nil {
			return xe.WrapWithNote("failed to upgrade schema", err)
		}
	}

	current, err := schema.Version(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	latest, err := schema.Latest()
	if err != nil {
		return xe.Wrap(err)
	}
	if current < latest {
		return fmt.Errorf("schema is outdated: %d (in db) < %d (latest)", current, latest)
	}
	return nil
}

func (k *taskDBPostgres) Tasks() kdb.TaskInterface {
	return k.tasks
}

func (k *taskDBPostgres) Schema() kdb.SchemaInterface {
	return k.schema
}

func (k *taskDBPostgres) Close() error {
	k.pool.Close()
	return nil
}
