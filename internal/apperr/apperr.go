// Package apperr defines the error taxonomy shared by the service and
// repository layers. Errors carry a machine-readable kind so HTTP handlers
// can map them to status codes without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInternal is an unanticipated failure (storage, encoding).
	KindInternal Kind = iota
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
	// KindConflict means the operation collides with existing state,
	// e.g. a duplicate registration.
	KindConflict
	// KindCapacityExceeded means the event has no confirmed seats left.
	KindCapacityExceeded
	// KindInvalidState means the entity cannot legally perform the
	// transition, e.g. registering for a past event.
	KindInvalidState
	// KindInvalidArgument means the caller supplied malformed input.
	KindInvalidArgument
	// KindForbidden means the actor does not own the resource or lacks
	// the required role.
	KindForbidden
	// KindUnauthenticated means no valid caller identity was presented.
	KindUnauthenticated
)

// Error is a taxonomy error with a human-readable reason.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, apperr.NotFound("")) works
// for sentinel-style comparisons.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func NotFound(msg string) *Error         { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error         { return &Error{Kind: KindConflict, Message: msg} }
func CapacityExceeded(msg string) *Error { return &Error{Kind: KindCapacityExceeded, Message: msg} }
func InvalidState(msg string) *Error     { return &Error{Kind: KindInvalidState, Message: msg} }
func InvalidArgument(msg string) *Error  { return &Error{Kind: KindInvalidArgument, Message: msg} }
func Forbidden(msg string) *Error        { return &Error{Kind: KindForbidden, Message: msg} }
func Unauthenticated(msg string) *Error  { return &Error{Kind: KindUnauthenticated, Message: msg} }

// Internal wraps an unexpected failure without leaking its detail to callers.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
