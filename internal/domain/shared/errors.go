package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is allows errors.Is matching on the error code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrValidationFailed    = NewDomainError("VALIDATION_FAILED", "Input validation failed")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
)

// NewNotFoundError builds a NOT_FOUND error naming the missing resource
func NewNotFoundError(resource string, id fmt.Stringer) *DomainError {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found: %s", resource, id))
}

// NewInvalidStateError builds an INVALID_STATE error carrying the current
// status so callers can render a specific message
func NewInvalidStateError(resource string, id fmt.Stringer, status string) *DomainError {
	return NewDomainError("INVALID_STATE",
		fmt.Sprintf("%s %s is in status %q and cannot be modified", resource, id, status))
}
