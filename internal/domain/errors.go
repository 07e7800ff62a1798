package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound is wrapped in a PersistenceError when the order an
	// event references does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition is wrapped in a PersistenceError when the store
	// rejects a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownConnection marks lookups for a connection that is no longer
	// registered. Disconnect races are expected; callers treat it as a no-op.
	ErrUnknownConnection = errors.New("unknown connection")
)

// ValidationError rejects a malformed inbound payload before it reaches the
// store. It is reported to the originating connection only, never broadcast.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError means the store rejected the write. Dispatch aborts before
// any broadcast when one occurs.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
