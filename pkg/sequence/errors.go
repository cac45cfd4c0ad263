package sequence

import (
	"errors"
	"fmt"
)

// ErrInvalidScript is returned for malformed scripts.
var ErrInvalidScript = errors.New("invalid script")

// StepError reports the step that aborted a script.
type StepError struct {
	Index int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}
