// Package apperrors defines the failure kinds surfaced by services and the
// HTTP status each one maps to.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrPartialFailure = errors.New("partial failure")

	// ErrNothingToUpdate marks an update whose patch carried no fields.
	// It is always reported together with ErrNotFound.
	ErrNothingToUpdate = errors.New("nothing to update")
)

// Error carries a client facing message and one or more kinds that
// errors.Is can match against.
type Error struct {
	msg   string
	kinds []error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() []error {
	return e.kinds
}

func newError(msg string, kinds ...error) *Error {
	return &Error{msg: msg, kinds: kinds}
}

func Validation(format string, args ...any) error {
	return newError(fmt.Sprintf(format, args...), ErrValidation)
}

func Unauthorized(msg string) error {
	return newError(msg, ErrUnauthorized)
}

func Conflict(msg string) error {
	return newError(msg, ErrConflict)
}

// NotFound reports a missing entity, e.g. "person 42 not found".
func NotFound(entity, id string) error {
	return newError(fmt.Sprintf("%s %s not found", entity, id), ErrNotFound)
}

// EntityNotFound reports a missing entity without an id, e.g. "person not found".
func EntityNotFound(entity string) error {
	return newError(fmt.Sprintf("%s not found", entity), ErrNotFound)
}

// NothingToUpdate is indistinguishable from NotFound for HTTP clients, but
// callers can tell it apart with errors.Is(err, ErrNothingToUpdate).
func NothingToUpdate(entity, id string) error {
	return newError(fmt.Sprintf("%s %s not found", entity, id), ErrNotFound, ErrNothingToUpdate)
}

func PartialFailure(entity string) error {
	return newError(fmt.Sprintf("%ss not complete updated", entity), ErrPartialFailure)
}

// StatusCode maps an error to the HTTP status returned to the caller.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPartialFailure):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text safe to show to a client. Unknown errors are
// hidden behind a generic message.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.msg
	}
	return "internal server error"
}
