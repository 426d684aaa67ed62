// Package billing implements integration.PaymentProvider on Stripe.
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.uber.org/zap"
)

// StripeAdapter implements Stripe customer, checkout and subscription operations
type StripeAdapter struct {
	api    *client.API
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(config.MaxNetworkRetries),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if config.BackendURL != "" {
		backendCfg.URL = stripe.String(config.BackendURL)
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackend(stripe.ConnectBackend),
		Uploads: stripe.GetBackend(stripe.UploadsBackend),
	}

	return newStripeAdapter(config.SecretKey, backends, logger), nil
}

func newStripeAdapter(key string, backends *stripe.Backends, logger *zap.Logger) *StripeAdapter {
	api := &client.API{}
	api.Init(key, backends)
	return &StripeAdapter{api: api, logger: logger}
}

// CreateCustomer creates a new customer in Stripe
func (a *StripeAdapter) CreateCustomer(ctx context.Context, email, name, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	cust, err := a.api.Customers.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe customer", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create customer: %w", classifyStripe(err))
	}

	a.logger.Info("Created Stripe customer", zap.String("user_id", userID), zap.String("customer_id", cust.ID))
	return cust.ID, nil
}

// CreateCheckoutSession creates a hosted checkout page for a subscription or a one-time payment
func (a *StripeAdapter) CreateCheckoutSession(ctx context.Context, req integration.CheckoutRequest) (*integration.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(req.Mode)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	switch req.Mode {
	case integration.CheckoutSubscription:
		if req.PriceID == "" {
			return nil, fmt.Errorf("%w: subscription checkout needs a price id", integration.ErrProviderRequestFailed)
		}
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(1),
		}}
	case integration.CheckoutPayment:
		if req.AmountCents <= 0 {
			return nil, fmt.Errorf("%w: payment checkout needs a positive amount", integration.ErrProviderRequestFailed)
		}
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
			},
		}}
	default:
		return nil, fmt.Errorf("%w: unknown checkout mode %q", integration.ErrProviderRequestFailed, req.Mode)
	}

	sess, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		a.logger.Error("Failed to create checkout session", zap.String("mode", string(req.Mode)), zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", classifyStripe(err))
	}
	return toCheckoutSession(sess), nil
}

// GetCheckoutSession retrieves a checkout session
func (a *StripeAdapter) GetCheckoutSession(ctx context.Context, id string) (*integration.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := a.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to get checkout session: %w", classifyStripe(err))
	}
	return toCheckoutSession(sess), nil
}

// CreatePortalSession opens the customer billing portal
func (a *StripeAdapter) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := a.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create portal session: %w", classifyStripe(err))
	}
	return sess.URL, nil
}

// CurrentSubscription returns the customer's live subscription, falling back
// to the newest one of any status
func (a *StripeAdapter) CurrentSubscription(ctx context.Context, customerID string) (*integration.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(10)

	var live, newest *stripe.Subscription
	iter := a.api.Subscriptions.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		if newest == nil || sub.Created > newest.Created {
			newest = sub
		}
		if isLive(sub.Status) && (live == nil || sub.Created > live.Created) {
			live = sub
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe: failed to list subscriptions: %w", classifyStripe(err))
	}

	pick := live
	if pick == nil {
		pick = newest
	}
	if pick == nil {
		return nil, integration.ErrProviderNotFound
	}
	return toSubscription(pick), nil
}

func isLive(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}

func toCheckoutSession(s *stripe.CheckoutSession) *integration.CheckoutSession {
	return &integration.CheckoutSession{
		ID:  s.ID,
		URL: s.URL,
		Paid: s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
			s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired,
		Metadata: s.Metadata,
	}
}

func toSubscription(s *stripe.Subscription) *integration.Subscription {
	out := &integration.Subscription{
		ID:     s.ID,
		Status: string(s.Status),
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		out.PriceID = s.Items.Data[0].Price.ID
	}
	if s.CurrentPeriodEnd > 0 {
		end := time.Unix(s.CurrentPeriodEnd, 0)
		out.CurrentPeriodEnd = &end
	}
	return out
}

func classifyStripe(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == 0 {
			return fmt.Errorf("%w: %s", integration.ErrProviderUnavailable, stripeErr.Msg)
		}
		return fmt.Errorf("%w: %s", integration.StatusError(stripeErr.HTTPStatusCode), stripeErr.Msg)
	}
	return fmt.Errorf("%w: %v", integration.ErrProviderUnavailable, err)
}

var _ integration.PaymentProvider = (*StripeAdapter)(nil)
