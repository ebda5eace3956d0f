package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code and message,
// so wrapped copies created with NewDomainErrorWithCause still match the
// sentinel they were derived from.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of the sentinel carrying cause. errors.Is still matches
// the sentinel.
func (e *DomainError) Wrap(cause error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, cause)
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeProvider          = "PROVIDER_ERROR"
	ErrCodeSearchUnavailable = "SEARCH_UNAVAILABLE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Validation errors. Their messages are returned to clients verbatim.
var (
	ErrInvalidMessages = NewDomainError(ErrCodeValidation, "Invalid messages format")
	ErrNoUserMessage   = NewDomainError(ErrCodeValidation, "No user message found")
)

// Not found errors
var (
	ErrKnowledgeNotFound = NewDomainError(ErrCodeNotFound, "knowledge item not found")
)

// Upstream errors
var (
	ErrProviderCallFailed      = NewDomainError(ErrCodeProvider, "provider call failed")
	ErrUnexpectedResponseShape = NewDomainError(ErrCodeInternalError, "unexpected response shape from model")
)

// Web search errors. These never reach a client.
var (
	ErrNoProviderConfigured = NewDomainError(ErrCodeSearchUnavailable, "no search provider configured")
	ErrAllProvidersFailed   = NewDomainError(ErrCodeSearchUnavailable, "all search providers failed")
)

// Internal errors
var (
	ErrInternal = NewDomainError(ErrCodeInternalError, "internal error")
)
