package robot

import "sync/atomic"

// State is the robot's advisory activity state.
type State int32

const (
	StateIdle State = iota
	StateBusy
)

// String returns "idle" or "busy".
func (s State) String() string {
	if s == StateBusy {
		return "busy"
	}
	return "idle"
}

// StateToken holds a State. It is advisory: writes are atomic and the last
// writer wins, but nothing is locked. Callers use it to decide whether to
// start an action ("only wave if idle"), not to exclude one another.
// The zero value reads StateIdle.
type StateToken struct {
	v atomic.Int32
}

// Load returns the current state.
func (t *StateToken) Load() State {
	return State(t.v.Load())
}

// Store sets the state.
func (t *StateToken) Store(s State) {
	t.v.Store(int32(s))
}
