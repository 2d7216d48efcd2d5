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

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidBehaviorType   = NewDomainError(ErrCodeValidation, "invalid behavior type")
	ErrInvalidAnalysisStatus = NewDomainError(ErrCodeValidation, "invalid analysis status")
	ErrInvalidScore          = NewDomainError(ErrCodeValidation, "recommendation score must be in [0,1]")
	ErrAmbiguousTarget       = NewDomainError(ErrCodeValidation, "recommendation must reference exactly one of document or external paper")
	ErrMissingRequiredField  = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound       = NewDomainError(ErrCodeNotFound, "document not found")
	ErrAnalysisNotFound       = NewDomainError(ErrCodeNotFound, "document analysis not found")
	ErrRecommendationNotFound = NewDomainError(ErrCodeNotFound, "recommendation not found")
)

// Authorization errors
var (
	ErrNotRecommendationOwner = NewDomainError(ErrCodeForbidden, "recommendation belongs to another user")
)
