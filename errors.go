package navigo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/navigo/internal/heap"
)

var (
	// ErrInvalidRequest is returned for requests the session rejects
	// without changing state.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotReady is returned when the navigator has no graph (closed).
	ErrNotReady = fmt.Errorf("%w: navigator not ready", ErrInvalidRequest)

	// ErrBusy is returned by TryStartSearch while a search is running.
	ErrBusy = fmt.Errorf("%w: search in progress", ErrInvalidRequest)

	// ErrEndpointsUnset is returned by TryStartSearch when start or target
	// has not been selected.
	ErrEndpointsUnset = fmt.Errorf("%w: start and target must be set", ErrInvalidRequest)

	// ErrCapacityExceeded is recorded when a search frontier outgrows the heap.
	ErrCapacityExceeded = heap.ErrCapacityExceeded

	// ErrBackpressure is returned when the resource controller's memory
	// limit rejects a search.
	ErrBackpressure = errors.New("backpressure: resource limit exceeded")

	// ErrClosed is returned by Close on an already closed navigator.
	ErrClosed = errors.New("navigator closed")
)

// PanicError reports a panic recovered on the search goroutine.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("search panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
