package domain

import "errors"

// Sentinel errors shared by every layer. Services wrap them with a detail message
// (fmt.Errorf("%w: ...", ErrConflict)) and controllers map them with errors.Is.
var (
	// ErrNotFound is returned when an entity is absent or not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a state or invariant check rejects the operation.
	ErrConflict = errors.New("conflict")
	// ErrBadRequest is returned for malformed input such as an inverted time range.
	ErrBadRequest = errors.New("bad request")
)
