package servo

import (
	"errors"
	"fmt"
)

var (
	// ErrInterrupted is returned by Run when the context is cancelled before every servo was moved.
	ErrInterrupted = errors.New("servo: interrupted")

	// ErrAngleOutOfRange is returned by SetAngle for angles outside [0, 180] degrees.
	ErrAngleOutOfRange = errors.New("servo: angle out of range")
)

// SetupError reports a channel that could not be claimed or started.
type SetupError struct {
	ID  int
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("servo: setup channel %d: %v", e.ID, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }
