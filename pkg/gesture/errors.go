package gesture

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknown is matched by UnknownError.
	ErrUnknown = errors.New("unknown gesture")

	// ErrInvalid is returned when a catalog entry is malformed.
	ErrInvalid = errors.New("invalid gesture")
)

// UnknownError is returned when a gesture name is not in the catalog.
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown gesture %q", e.Name)
}

// Is reports whether target is ErrUnknown.
func (e *UnknownError) Is(target error) bool {
	return target == ErrUnknown
}
