package robot

import (
	"errors"
	"fmt"
)

// ErrRejected is wrapped by CommandError when the robot answers with a
// non-zero status code.
var ErrRejected = errors.New("robot: command rejected")

// CommandError is returned when an actuator channel rejects a command or the
// call fails in transport. Commands are never retried here.
type CommandError struct {
	Channel string // "speech" or "motion"
	Command string // e.g. "play", "stop", "action"
	Code    int    // robot status code when rejected
	Err     error
}

func (e *CommandError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("robot %s %s: code %d: %v", e.Channel, e.Command, e.Code, e.Err)
	}
	return fmt.Sprintf("robot %s %s: %v", e.Channel, e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// InitError is returned when the actuator connection cannot be established.
// It is fatal: nothing can run without the robot.
type InitError struct {
	Endpoint string
	Err      error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("robot: cannot connect to %s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}
