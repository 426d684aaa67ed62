package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alfred/backend/internal/domain/billing"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoBillingAccount is returned for portal requests before any checkout
var ErrNoBillingAccount = shared.NewDomainError("NO_BILLING_ACCOUNT", "No billing account exists yet; subscribe to a plan first")

// RedirectURLs are where Stripe sends the browser after checkout or portal use
type RedirectURLs struct {
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

// CheckoutInput selects the plan to buy
type CheckoutInput struct {
	Plan     string
	Interval billing.Interval
}

// CheckoutDTO is a hosted checkout page
type CheckoutDTO struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// SubscriptionDTO describes the caller's billing state
type SubscriptionDTO struct {
	Plan           string         `json:"plan"`
	Status         string         `json:"status,omitempty"`
	SubscriptionID string         `json:"subscription_id,omitempty"`
	RenewsAt       *time.Time     `json:"renews_at,omitempty"`
	Limits         billing.Limits `json:"limits"`
	HasCustomer    bool           `json:"has_customer"`
}

// SubscriptionService runs plan checkout, the billing portal and subscription sync
type SubscriptionService struct {
	userRepo identity.UserRepository
	plans    *billing.Catalogue
	payments integration.PaymentProvider
	urls     RedirectURLs
	logger   *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	userRepo identity.UserRepository,
	plans *billing.Catalogue,
	payments integration.PaymentProvider,
	urls RedirectURLs,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		userRepo: userRepo,
		plans:    plans,
		payments: payments,
		urls:     urls,
		logger:   logger,
	}
}

// Plans returns the plan table
func (s *SubscriptionService) Plans() []billing.Plan {
	return s.plans.Plans()
}

// GetSubscription returns the stored billing state
func (s *SubscriptionService) GetSubscription(ctx context.Context, userID uuid.UUID) (*SubscriptionDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(user), nil
}

// Checkout opens a subscription checkout, creating the Stripe customer first if needed
func (s *SubscriptionService) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutDTO, error) {
	interval := input.Interval
	if interval == "" {
		interval = billing.Monthly
	}
	priceID, err := s.plans.PriceID(input.Plan, interval)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCustomer(ctx, user); err != nil {
		return nil, err
	}

	session, err := s.payments.CreateCheckoutSession(ctx, integration.CheckoutRequest{
		Mode:       integration.CheckoutSubscription,
		CustomerID: user.StripeCustomerID,
		PriceID:    priceID,
		SuccessURL: s.urls.SuccessURL,
		CancelURL:  s.urls.CancelURL,
		Metadata:   map[string]string{"user_id": user.ID.String(), "plan": input.Plan},
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription checkout: %w", err)
	}

	s.logger.Info("Subscription checkout created",
		zap.String("user_id", user.ID.String()),
		zap.String("plan", input.Plan),
		zap.String("interval", string(interval)))
	return &CheckoutDTO{SessionID: session.ID, URL: session.URL}, nil
}

// Portal opens the Stripe billing portal
func (s *SubscriptionService) Portal(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID == "" {
		return "", ErrNoBillingAccount
	}
	url, err := s.payments.CreatePortalSession(ctx, user.StripeCustomerID, s.urls.PortalReturnURL)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return url, nil
}

// Sync re-reads the subscription from Stripe and stores the resulting plan
func (s *SubscriptionService) Sync(ctx context.Context, userID uuid.UUID) (*SubscriptionDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == "" {
		return s.toDTO(user), nil
	}

	sub, err := s.payments.CurrentSubscription(ctx, user.StripeCustomerID)
	switch {
	case errors.Is(err, integration.ErrProviderNotFound):
		user.ApplySubscription(billing.PlanFree, "", identity.SubscriptionNone, nil)
	case err != nil:
		return nil, fmt.Errorf("read subscription: %w", err)
	default:
		plan := s.plans.PlanForPriceID(sub.PriceID)
		user.ApplySubscription(plan.ID, sub.ID, identity.SubscriptionStatus(sub.Status), sub.CurrentPeriodEnd)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Subscription synced",
		zap.String("user_id", user.ID.String()),
		zap.String("plan", user.Plan),
		zap.String("status", string(user.SubscriptionStatus)))
	return s.toDTO(user), nil
}

func (s *SubscriptionService) ensureCustomer(ctx context.Context, user *identity.User) error {
	if user.StripeCustomerID != "" {
		return nil
	}
	customerID, err := s.payments.CreateCustomer(ctx, user.Email, user.Name, user.ID.String())
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	user.SetStripeCustomer(customerID)
	return s.userRepo.Save(ctx, user)
}

func (s *SubscriptionService) toDTO(user *identity.User) *SubscriptionDTO {
	plan := user.EffectivePlan()
	return &SubscriptionDTO{
		Plan:           plan,
		Status:         string(user.SubscriptionStatus),
		SubscriptionID: user.StripeSubscriptionID,
		RenewsAt:       user.PlanRenewsAt,
		Limits:         s.plans.LimitsFor(plan),
		HasCustomer:    user.StripeCustomerID != "",
	}
}
