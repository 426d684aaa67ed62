package integration

import (
	"context"
	"time"
)

// CheckoutMode is the kind of checkout session
type CheckoutMode string

const (
	CheckoutSubscription CheckoutMode = "subscription"
	CheckoutPayment      CheckoutMode = "payment"
)

// CheckoutRequest creates a hosted checkout page
type CheckoutRequest struct {
	Mode       CheckoutMode
	CustomerID string
	// PriceID is used for subscriptions
	PriceID string
	// AmountCents, Currency and ProductName are used for one-time payments
	AmountCents int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is a hosted checkout page
type CheckoutSession struct {
	ID       string
	URL      string
	Paid     bool
	Metadata map[string]string
}

// Subscription is a customer's recurring plan
type Subscription struct {
	ID               string
	PriceID          string
	Status           string
	CurrentPeriodEnd *time.Time
}

// PaymentProvider manages customers, checkout and subscriptions
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email, name, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	// CurrentSubscription returns the newest live subscription or ErrProviderNotFound
	CurrentSubscription(ctx context.Context, customerID string) (*Subscription, error)
}
