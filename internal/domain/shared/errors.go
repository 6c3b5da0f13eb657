package shared

import "errors"

// Error codes shared by every bounded context
const (
	CodeAuthentication = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeConnectivity   = "CONNECTIVITY_ERROR"
	CodeParse          = "PARSE_ERROR"
	CodeInvalidState   = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers write errors.Is(err, shared.ErrNotFound) for any not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAuthenticationError reports a bad or missing credential for a remote service
func NewAuthenticationError(message string, cause error) *DomainError {
	return WrapDomainError(CodeAuthentication, message, cause)
}

// NewNotFoundError reports a missing item, template, or submission
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewValidationError reports an incomplete assignment or malformed payload
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewConnectivityError reports an unreachable remote service
func NewConnectivityError(message string, cause error) *DomainError {
	return WrapDomainError(CodeConnectivity, message, cause)
}

// NewParseError reports a malformed structured column payload
func NewParseError(message string, cause error) *DomainError {
	return WrapDomainError(CodeParse, message, cause)
}

// CodeOf returns the code of the first DomainError in err's chain, or "" if none
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrUnauthorized = NewDomainError(CodeAuthentication, "Not authorized to perform this action")
	ErrValidation   = NewDomainError(CodeValidation, "Validation failed")
	ErrConnectivity = NewDomainError(CodeConnectivity, "Remote service unreachable")
	ErrParse        = NewDomainError(CodeParse, "Malformed payload")
	ErrInvalidState = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)
