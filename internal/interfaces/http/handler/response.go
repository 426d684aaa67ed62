package handler

import "github.com/alfred/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// URLData wraps a redirect URL such as a billing portal session
// @Description Redirect URL
type URLData struct {
	URL string `json:"url" example:"https://billing.stripe.com/p/session/test"`
}

// ContentData wraps rendered text content
// @Description Content data
type ContentData struct {
	Content string `json:"content"`
}

// HealthData is the body of the health endpoint
// @Description Service health
type HealthData struct {
	Status  string            `json:"status" example:"ok"`
	Version string            `json:"version" example:"1.0.0"`
	Checks  map[string]string `json:"checks,omitempty"`
}
