// Package errors provides sentinel and typed errors shared by the catalog, recommendation
// and HTTP layers. Handlers map them to problem responses with errors.Is / errors.As.
package errors

import "fmt"

// ErrNotFound represents a "not found" error.
// Use when a requested catalog row or stored intake doesn't exist.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}

	return "resource not found"
}

// Is reports whether target is a NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}

// NewNotFoundError creates a new NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// ErrValidation represents a validation error.
// Use when intake or question input fails validation.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return fmt.Sprintf("validation failed for field: %s", e.Field)
	}

	return "validation error"
}

// Is reports whether target is a ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// RetrievalError reports a catalog query failure during one retrieval stage.
// The recommendation pipeline treats it as "no data" but logs and counts it.
type RetrievalError struct {
	Stage string
	Err   error
}

// NewRetrievalError wraps err as a failure of the named retrieval stage.
func NewRetrievalError(stage string, err error) *RetrievalError {
	return &RetrievalError{Stage: stage, Err: err}
}

// Error implements the error interface.
func (e *RetrievalError) Error() string {
	switch {
	case e.Stage != "" && e.Err != nil:
		return fmt.Sprintf("retrieval failed at stage %s: %v", e.Stage, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("retrieval failed: %v", e.Err)
	default:
		return "retrieval failed"
	}
}

// Unwrap returns the underlying store error.
func (e *RetrievalError) Unwrap() error {
	return e.Err
}
