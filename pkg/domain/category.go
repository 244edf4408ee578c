package domain

import "fmt"

// Category is the logical group of tasks.
//
// Tasks in different categories are polled independently and kept in separated states.
type Category string

const (
	// Training is a category of tasks which train new models.
	Training Category = "training"

	// Curating is a category of tasks which modify existing models (fuse, sort, reset topics, ...).
	Curating Category = "curating"
)

func (c Category) String() string {
	return string(c)
}

// Categories returns all known categories.
func Categories() []Category {
	return []Category{Training, Curating}
}

func AsCategory(s string) (Category, error) {
	switch s {
	case string(Training):
		return Training, nil
	case string(Curating):
		return Curating, nil
	default:
		return "", fmt.Errorf("%w: '%s' is not Category", ErrUnknown, s)
	}
}
