package errors

import (
	"errors"
	"fmt"

	kdb "github.com/intelcomp/taskwatch/pkg/db"
	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
)

// requested data is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return domain.ErrMissing
}

// data to be inserted is there already.
type Conflict struct {
	Table    string
	Identity string
}

var _ error = Conflict{}

func (c Conflict) Error() string {
	return fmt.Sprintf("%s is already in %s", c.Identity, c.Table)
}

func (c Conflict) Unwrap() error {
	return kdb.ErrConflict
}

// Classify translates well-known postgres errors about the row into Missing or Conflict.
//
// Other errors are returned as is.
func Classify(err error, table string, identity string) error {
	pgErr := new(pgconn.PgError)
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return Conflict{Table: table, Identity: identity}
	case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
		// invalid text representation: the id is not uuid, so no rows can match.
		return Missing{Table: table, Identity: identity}
	}
	return err
}
