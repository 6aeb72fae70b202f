package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
)

// Common application errors
var (
	ErrUserNotFound = NewNotFoundError("user", "User not found")
	ErrInternal     = NewInternalError("Internal server error", nil)
)

// ValidationError represents a validation failure with field-level details.
// Fields maps a payload field to every message collected for it.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  make(map[string][]string),
	}
}

// Add appends a message for field
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s %v", e.Message, fields)
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the HTTP status for this error
func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

// AlreadyExistsError represents a unique constraint violation on Field.
type AlreadyExistsError struct {
	Resource string
	Field    string
	Err      error
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, field string, err error) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Field:    field,
		Err:      err,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// Unwrap returns the wrapped error
func (e *AlreadyExistsError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *AlreadyExistsError) HTTPStatus() int {
	return http.StatusConflict
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// HTTPStatuser is implemented by errors that know their HTTP status
type HTTPStatuser interface {
	HTTPStatus() int
}

// StatusOf returns the HTTP status carried by err, or 500 for anything untyped.
func StatusOf(err error) int {
	var s HTTPStatuser
	if stderrors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}
