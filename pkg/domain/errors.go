package domain

import "errors"

var (
	// requested entity is not found.
	ErrMissing = errors.New("missing")

	// the value can not be classified into a Category.
	ErrUnclassifiable = errors.New("unclassifiable")

	// the value is not one of the known enumeration.
	ErrUnknown = errors.New("unknown value")
)
