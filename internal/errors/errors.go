// Package errors provides coded domain errors for the Connect server.
//
// Services return *Error values; the API layer maps Code to an HTTP status.
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
//
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    status := domainErr.HTTPStatus()
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
	New  = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeValidation    Code = "VALIDATION"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeUnavailable   Code = "UNAVAILABLE"
	CodeStorage       Code = "STORAGE"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrStorage       = &Error{Code: CodeStorage, Message: "storage error"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with per-field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// AlreadyExistsf creates an already exists error with a formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence failure.
func Storage(err error, msg string) *Error {
	return &Error{Code: CodeStorage, Message: msg, cause: err}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
