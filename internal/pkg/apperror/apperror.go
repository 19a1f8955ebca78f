package apperror

import (
	"errors"
	"net/http"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound reports a missing user, item, booking or comment.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

// Validation reports well-formed but semantically invalid input.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Forbidden reports a caller without the required relationship to the resource.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

// CodeOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
