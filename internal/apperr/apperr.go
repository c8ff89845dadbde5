// Package apperr defines the application error taxonomy. Every workflow
// failure is one of these kinds; the HTTP boundary maps each kind to a fixed
// status code and never leaks internal detail to the client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for classification with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// Error carries a client-safe message alongside its taxonomy kind.
type Error struct {
	Kind    error
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

// Is reports membership in the taxonomy, so errors.Is(err, apperr.ErrConflict)
// works on any *Error built by the constructors below.
func (e *Error) Is(target error) bool { return target == e.Kind }

// Invalid marks malformed input rejected before the workflow runs.
func Invalid(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

// NotFound marks a missing identity or OTP record.
func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Unauthorized marks a bad credential, code, or token.
func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

// Forbidden marks an authenticated subject lacking permission.
func Forbidden(message string) *Error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// Conflict marks a duplicate identity or disallowed duplicate OTP.
func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Internal wraps a store or signing failure. The wrapped cause is logged
// server-side only; clients see the generic message.
func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Message: "Internal server error", Err: err}
}

// Status returns the HTTP status code for the given error. Unclassified
// errors are treated as internal.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
