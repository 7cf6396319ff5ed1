package errors

import (
	"fmt"
	"net/http"
)

// Error codes for the chat subsystem's failure classes.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeNotFound           = "NOT_FOUND"
	CodeValidationFailure  = "VALIDATION_FAILURE"
	CodeUpstreamFailure    = "UPSTREAM_FAILURE"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	cause      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// WithCause records the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// NewUnauthenticatedError creates an error for a missing or invalid credential
func NewUnauthenticatedError(message string) *AppError {
	return NewError(http.StatusUnauthorized, CodeUnauthenticated, message)
}

// NewNotFoundError creates an error for an absent user, conversation or message
func NewNotFoundError(message string) *AppError {
	return NewError(http.StatusNotFound, CodeNotFound, message)
}

// NewValidationError creates an error for rejected input
func NewValidationError(message string) *AppError {
	return NewError(http.StatusBadRequest, CodeValidationFailure, message)
}

// NewUpstreamError creates an error for a failed external service call
func NewUpstreamError(message string) *AppError {
	return NewError(http.StatusBadGateway, CodeUpstreamFailure, message)
}

// NewPersistenceError creates an error for a failed store operation
func NewPersistenceError(message string) *AppError {
	return NewError(http.StatusInternalServerError, CodePersistenceFailure, message)
}

// Is checks whether err is an AppError carrying the given code
func Is(err error, code string) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == code
}
