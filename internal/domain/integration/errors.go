package integration

import "errors"

var (
	ErrProviderNotConfigured   = errors.New("integration: provider not configured")
	ErrProviderUnavailable     = errors.New("integration: provider temporarily unavailable")
	ErrProviderRequestFailed   = errors.New("integration: provider request failed")
	ErrProviderInvalidResponse = errors.New("integration: invalid provider response")
	ErrProviderAuthFailed      = errors.New("integration: provider authentication failed")
	ErrProviderRateLimited     = errors.New("integration: provider rate limited")
	ErrProviderNotFound        = errors.New("integration: resource not found at provider")
)

// StatusError maps an HTTP status from a provider to a sentinel. Only
// ErrProviderUnavailable counts against a circuit breaker.
func StatusError(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrProviderAuthFailed
	case status == 404:
		return ErrProviderNotFound
	case status == 429:
		return ErrProviderRateLimited
	case status >= 500:
		return ErrProviderUnavailable
	default:
		return ErrProviderRequestFailed
	}
}
