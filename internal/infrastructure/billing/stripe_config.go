package billing

import (
	"fmt"
	"strings"
)

// StripeConfig holds configuration for Stripe integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string

	// BackendURL points the API backend at stripe-mock; empty uses api.stripe.com
	BackendURL string

	// MaxNetworkRetries is passed to the Stripe backend
	MaxNetworkRetries int64
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: secret key must start with sk_ or rk_")
	}
	if c.MaxNetworkRetries == 0 {
		c.MaxNetworkRetries = 2
	}
	return nil
}
