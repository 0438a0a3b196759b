package core

import (
	"errors"
	"fmt"
)

// ErrNothingToExport signals that the current filters matched no records,
// so no export payload was produced.
var ErrNothingToExport = errors.New("nothing to export")

// ValidationError reports a rejected user input on create or update.
// It is raised before any remote call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a mutation aimed at a record the remote store
// does not know.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.ID)
}

// RemoteError wraps an opaque transport or backend failure. The cause is
// preserved for logging but callers should treat it as opaque.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote operation failed: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
