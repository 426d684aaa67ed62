package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationLength is used when a field length is invalid
	ErrCodeValidationLength = "ERR_VALIDATION_LENGTH"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodePaymentIncomplete is used when a checkout session has not been paid
	ErrCodePaymentIncomplete = "ERR_PAYMENT_INCOMPLETE"
	// ErrCodeDomainUnavailable is used when a domain cannot be registered
	ErrCodeDomainUnavailable = "ERR_DOMAIN_UNAVAILABLE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Rate limiting and plan error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeQuotaExceeded is used when a plan limit is reached
	ErrCodeQuotaExceeded = "ERR_QUOTA_EXCEEDED"
)

// Upstream error codes, for failures of external providers
const (
	// ErrCodeUpstream is used when a provider rejected or failed a request
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeUpstreamUnavailable is used when a provider is down or not configured
	ErrCodeUpstreamUnavailable = "ERR_UPSTREAM_UNAVAILABLE"
	// ErrCodeUpstreamRateLimited is used when a provider throttled the request
	ErrCodeUpstreamRateLimited = "ERR_UPSTREAM_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodePaymentIncomplete: http.StatusPaymentRequired,
	ErrCodeDomainUnavailable: http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Limits -> 429 Too Many Requests
	ErrCodeRateLimited:   http.StatusTooManyRequests,
	ErrCodeQuotaExceeded: http.StatusTooManyRequests,

	// Upstream providers
	ErrCodeUpstream:            http.StatusBadGateway,
	ErrCodeUpstreamUnavailable: http.StatusServiceUnavailable,
	ErrCodeUpstreamRateLimited: http.StatusTooManyRequests,
}

// businessRuleCodes are domain codes that describe a state the caller must change first
var businessRuleCodes = map[string]bool{
	"ERR_ATTEMPTS_EXHAUSTED":   true,
	"ERR_DEPLOYMENT_FINISHED":  true,
	"ERR_EMPTY_PROJECT":        true,
	"ERR_EMPTY_GENERATION":     true,
	"ERR_NO_ARTIFACTS":         true,
	"ERR_NO_BILLING_ACCOUNT":   true,
	"ERR_NO_HTML_PAGES":        true,
	"ERR_PRICE_NOT_CONFIGURED": true,
	"ERR_FREE_PLAN":            true,
	"ERR_AVATAR_REQUIRED":      true,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Domain codes without an explicit entry are classified by name:
// ERR_INVALID_*, ERR_UNKNOWN_*, ERR_TOO_* and ERR_*_REQUIRED are input errors.
// Anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if businessRuleCodes[code] {
		return http.StatusUnprocessableEntity
	}
	switch {
	case strings.HasPrefix(code, "ERR_INVALID_"),
		strings.HasPrefix(code, "ERR_UNKNOWN_"),
		strings.HasPrefix(code, "ERR_TOO_"),
		strings.HasSuffix(code, "_TOO_LARGE"),
		strings.HasSuffix(code, "_REQUIRED"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"QUOTA_EXCEEDED":       ErrCodeQuotaExceeded,
	"UPSTREAM_FAILURE":     ErrCodeUpstream,
	"PAYMENT_INCOMPLETE":   ErrCodePaymentIncomplete,
	"DOMAIN_UNAVAILABLE":   ErrCodeDomainUnavailable,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the ERR_ format.
// Mapped codes are translated; other codes gain the ERR_ prefix.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
