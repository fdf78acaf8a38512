package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad is the sentinel every LoadError matches.
	ErrLoad = errors.New("graph: load failed")

	// ErrNoEligibleNode is returned when no node has enough outgoing edges
	// to serve as a route endpoint.
	ErrNoEligibleNode = errors.New("graph: no eligible route node")

	// ErrNodeNotFound is returned when an identity does not resolve.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrNegativeWeight is returned for negative or NaN edge weights.
	ErrNegativeWeight = errors.New("graph: negative edge weight")

	// ErrIDOutOfRange is returned by Encode for identities that do not fit
	// the file format's int32 fields.
	ErrIDOutOfRange = errors.New("graph: node id out of int32 range")
)

// LoadError describes a malformed or truncated graph stream.
type LoadError struct {
	// Offset is the byte offset into the (decompressed) stream where the
	// failing record starts.
	Offset int64
	Reason string
	cause  error
}

func (e *LoadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("graph: load failed at offset %d: %s: %v", e.Offset, e.Reason, e.cause)
	}
	return fmt.Sprintf("graph: load failed at offset %d: %s", e.Offset, e.Reason)
}

// Unwrap returns ErrLoad and the underlying cause, if any.
func (e *LoadError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrLoad, e.cause}
	}
	return []error{ErrLoad}
}
