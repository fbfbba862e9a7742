package shared

import "fmt"

// DomainError represents a business rule violation
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
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
	ErrNotFound            = NewDomainError("NOT_FOUND", "resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "invalid input")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "invalid state for this operation")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrForbidden           = NewDomainError("FORBIDDEN", "forbidden")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "resource was modified by another operation")
)
