package microtask

import (
	"fmt"

	"github.com/vango-dev/pulse/internal/errors"
)

var (
	// ErrLoopClosed is returned by Submit and Do once the loop is closed
	// or has stopped running.
	ErrLoopClosed = errors.New("E110")

	// ErrLoopRunning is returned when Run is called on a running loop.
	ErrLoopRunning = errors.New("E111")

	// ErrPanicked matches every *PanicError under errors.Is.
	ErrPanicked = errors.New("E103")
)

// PanicError reports a panic recovered at the loop boundary.
type PanicError struct {
	// Value is the value passed to panic.
	Value any

	// Stack is the goroutine stack at the point of recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPanicked.Error(), e.Value)
}

// Unwrap exposes ErrPanicked and, when the panic value is an error, that
// error too.
func (e *PanicError) Unwrap() []error {
	errs := []error{ErrPanicked}
	if err, ok := e.Value.(error); ok {
		errs = append(errs, err)
	}
	return errs
}
