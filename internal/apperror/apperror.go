// Package apperror defines the error kinds shared by every layer of the app.
//
// The service layer returns these; the HTTP layer maps them to status codes.
// Neither side needs to know about the other — errors.Is() walks the chain
// and finds the sentinel no matter how many times the error was wrapped.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstream marks failures of an external collaborator (the media host
	// or the database being unreachable). Handlers map it to 502 rather than
	// 500 so operators can tell "we broke" apart from "they broke".
	ErrUpstream = errors.New("upstream failure")
)

type AppError struct {
	Err     error  // sentinel above — checked with errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMsg is NotFound with a caller-supplied message, for cases where
// "x not found with id y" would say more than we want to. Unlike reports
// "you haven't liked this post" whether the like or the whole post is
// missing — callers can't tell the two causes apart, on purpose.
func NotFoundMsg(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// ConflictMsg is Conflict with a caller-supplied message.
func ConflictMsg(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for missing or invalid credentials.
// HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream wraps a failure from an external collaborator. The cause stays in
// the chain for logging; clients see a stable message without internals.
func Upstream(collaborator string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s: %v", ErrUpstream, collaborator, cause),
		Message: fmt.Sprintf("%s is unavailable", collaborator),
	}
}
