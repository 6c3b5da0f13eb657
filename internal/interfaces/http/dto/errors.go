package dto

import "net/http"

// API error codes, ERR_<DESCRIPTION>. Every code the API emits is listed in
// ErrorCodeHTTPStatus.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidJSON is used when the request body is not valid JSON
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeBadRequest is used for malformed path or query parameters
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"

	// ErrCodeUnauthorized is used when a credential to either platform, or
	// the host session token, is missing or rejected
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	// ErrCodeInvalidState is used when an operation runs out of pipeline
	// order or was superseded by a newer request
	ErrCodeInvalidState = "ERR_INVALID_STATE"

	// ErrCodeConnectivity is used when a remote platform is unreachable
	ErrCodeConnectivity = "ERR_CONNECTIVITY"
	// ErrCodeParse is used when a remote platform answered with a body that
	// could not be decoded
	ErrCodeParse = "ERR_PARSE"
	// ErrCodeUpstream is used when a proxied request fails upstream
	ErrCodeUpstream = "ERR_UPSTREAM"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInvalidState: http.StatusConflict,

	// remote faults are the gateway's, not the caller's
	ErrCodeConnectivity: http.StatusBadGateway,
	ErrCodeParse:        http.StatusBadGateway,
	ErrCodeUpstream:     http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"UNAUTHORIZED":       ErrCodeUnauthorized,
	"NOT_FOUND":          ErrCodeNotFound,
	"VALIDATION_ERROR":   ErrCodeValidation,
	"CONNECTIVITY_ERROR": ErrCodeConnectivity,
	"PARSE_ERROR":        ErrCodeParse,
	"INVALID_STATE":      ErrCodeInvalidState,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
