package billing

import (
	"context"

	"github.com/alfred/backend/internal/domain/integration"
)

// Disabled stands in for Stripe when no secret key is configured
type Disabled struct{}

var _ integration.PaymentProvider = Disabled{}

func (Disabled) CreateCustomer(context.Context, string, string, string) (string, error) {
	return "", integration.ErrProviderNotConfigured
}

func (Disabled) CreateCheckoutSession(context.Context, integration.CheckoutRequest) (*integration.CheckoutSession, error) {
	return nil, integration.ErrProviderNotConfigured
}

func (Disabled) GetCheckoutSession(context.Context, string) (*integration.CheckoutSession, error) {
	return nil, integration.ErrProviderNotConfigured
}

func (Disabled) CreatePortalSession(context.Context, string, string) (string, error) {
	return "", integration.ErrProviderNotConfigured
}

func (Disabled) CurrentSubscription(context.Context, string) (*integration.Subscription, error) {
	return nil, integration.ErrProviderNotConfigured
}
