// Package hosting implements the hosting and domain registrar ports on the Vercel REST API.
package hosting

import (
	"errors"
	"time"
)

const (
	// VercelAPIURL is the production API endpoint
	VercelAPIURL = "https://api.vercel.com"

	maxVercelResponseSize = 4 << 20
	maxBuildLogBytes      = 16 << 10
)

// ErrVercelConfigMissingToken is returned by Validate without a token
var ErrVercelConfigMissingToken = errors.New("vercel: token is required")

// VercelConfig holds configuration for the Vercel API
type VercelConfig struct {
	// Token is a Vercel access token
	Token string
	// TeamID scopes every request to a team when set
	TeamID string
	// APIBaseURL is the API endpoint, overridable for tests
	APIBaseURL string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// NewVercelConfig creates a configuration with defaults
func NewVercelConfig(token, teamID string) *VercelConfig {
	return &VercelConfig{
		Token:      token,
		TeamID:     teamID,
		APIBaseURL: VercelAPIURL,
		Timeout:    30 * time.Second,
	}
}

// Validate validates the configuration
func (c *VercelConfig) Validate() error {
	if c.Token == "" {
		return ErrVercelConfigMissingToken
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = VercelAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
