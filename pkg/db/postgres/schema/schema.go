package schema

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	kpool "github.com/intelcomp/taskwatch/pkg/db/postgres/pool"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
)

//go:embed repository
var repository embed.FS

type pgSchema struct {
	pool       kpool.Pool
	repository fs.FS
}

// New creates a new Schema with embedded schema repository.
func New(pool kpool.Pool) *pgSchema {
	root, err := fs.Sub(repository, "repository")
	if err != nil {
		// embedded. never happens.
		panic(err)
	}
	return &pgSchema{pool: pool, repository: root}
}

type version struct {
	Version int
	Root    string
}

func (v version) Apply(ctx context.Context, repo fs.FS, conn kpool.Queryer) error {
	return fs.WalkDir(repo, v.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}

		query, err := fs.ReadFile(repo, p)
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return err
		}
		return nil
	})
}

// Version returns the current version of the schema in the database.
//
// If no schema is there, it returns 0.
func (s *pgSchema) Version(ctx context.Context) (int, error) {
	return currentVersion(ctx, s.pool)
}

func currentVersion(ctx context.Context, conn kpool.Queryer) (int, error) {
	var version *int
	if err := conn.QueryRow(
		ctx, `SELECT max("version") FROM "schema_version"`,
	).Scan(&version); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			if pgerr.Code == pgerrcode.UndefinedTable {
				return 0, nil
			}
		}
		return -1, err
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

// Latest returns the newest version in the schema repository.
func (s *pgSchema) Latest() (int, error) {
	vs, err := s.versions()
	if err != nil {
		return -1, err
	}
	if len(vs) == 0 {
		return 0, nil
	}
	return vs[len(vs)-1].Version, nil
}

// Upgrade applies schema versions newer than the current one, in a transaction.
func (s *pgSchema) Upgrade(ctx context.Context) error {
	schemaVersions, err := s.versions()
	if err != nil {
		return err
	}

	return kpool.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := currentVersion(ctx, tx)
		if err != nil {
			return err
		}

		for _, v := range schemaVersions {
			if v.Version <= current {
				continue
			}
			if err := v.Apply(ctx, s.repository, tx); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM "schema_version"`); err != nil {
				return err
			}
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO "schema_version" ("version") VALUES ($1)`,
				v.Version,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// versions lookup the schema from the schema repository.
//
// # Returns
//
// - []version: The list of schema versions, sorted by version number.
//
// - error: The error if any.
func (s *pgSchema) versions() ([]version, error) {
	dir, err := fs.ReadDir(s.repository, ".")
	if err != nil {
		return nil, err
	}

	schemaVersions := make([]version, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsDir() {
			continue
		}

		v, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		schemaVersions = append(schemaVersions, version{
			Version: v,
			Root:    path.Clean(entry.Name()),
		})
	}
	slices.SortFunc(
		schemaVersions,
		func(i, j version) int { return cmp.Compare(i.Version, j.Version) },
	)

	return schemaVersions, nil
}
