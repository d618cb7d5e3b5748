package core

import "fmt"

// StorageError wraps a memory-store failure so callers can distinguish a
// degraded persistence step from a worker or validation failure. The
// coordinator logs these and continues; it never lets one abort a run.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("memory store %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
