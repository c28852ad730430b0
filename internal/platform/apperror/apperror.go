// Package apperror defines the structured errors returned by domain services
// and rendered by the HTTP error handler.
package apperror

import (
	"errors"
	"net/http"
)

// Code is the machine-readable error taxonomy tag.
type Code string

const (
	CodeNotFound   Code = "NOT_FOUND"
	CodeBadRequest Code = "BAD_REQUEST"
	CodeValidation Code = "VALIDATION_ERROR"
	CodeConflict   Code = "CONFLICT"
	CodeInternal   Code = "INTERNAL_ERROR"

	CodeTooManyRequests Code = "TOO_MANY_REQUESTS"
)

var defaultMessages = map[Code]string{
	CodeNotFound:   "Resource not found",
	CodeBadRequest: "Bad request",
	CodeValidation: "Validation error",
	CodeConflict:   "Conflict detected",
	CodeInternal:   "Internal server error",

	CodeTooManyRequests: "Too many requests",
}

// DefaultMessage returns the generic message for a code.
func DefaultMessage(code Code) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[CodeInternal]
}

// Error is a typed application error. Operational errors carry a message
// that is safe to show to clients; non-operational ones do not.
type Error struct {
	Status      int
	Code        Code
	Message     string
	Details     interface{}
	Operational bool
	Err         error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return DefaultMessage(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an operational error.
func New(status int, code Code, cause error, message string, details interface{}) *Error {
	if message == "" {
		message = DefaultMessage(code)
	}
	return &Error{
		Status:      status,
		Code:        code,
		Message:     message,
		Details:     details,
		Operational: true,
		Err:         cause,
	}
}

func NotFound(cause error, message string, details interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, cause, message, details)
}

func BadRequest(cause error, message string, details interface{}) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, cause, message, details)
}

func Validation(message string, details interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, nil, message, details)
}

// FromStatus picks the taxonomy code for a bare HTTP status.
func FromStatus(status int) Code {
	switch {
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeTooManyRequests
	case status >= http.StatusInternalServerError:
		return CodeInternal
	default:
		return CodeBadRequest
	}
}

// Internal wraps an unexpected error. Its message is never shown to clients.
func Internal(err error) *Error {
	return &Error{
		Status:      http.StatusInternalServerError,
		Code:        CodeInternal,
		Message:     DefaultMessage(CodeInternal),
		Operational: false,
		Err:         err,
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// From returns err as an *Error, wrapping unknown errors as Internal.
func From(err error) *Error {
	if appErr, ok := As(err); ok {
		return appErr
	}
	return Internal(err)
}
