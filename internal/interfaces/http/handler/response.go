package handler

import "github.com/signbridge/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success   bool           `json:"success"`
	Data      T              `json:"data,omitempty"`
	Error     *dto.ErrorInfo `json:"error,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success   bool           `json:"success" example:"false"`
	Error     *dto.ErrorInfo `json:"error,omitempty"`
	RequestID string         `json:"request_id,omitempty" example:"3f2c9a1b8e7d6c5f"`
}

// URLData carries a single link
// @Description Link response
type URLData struct {
	URL string `json:"url"`
}
