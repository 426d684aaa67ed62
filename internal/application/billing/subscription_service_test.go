package billing

import (
	"context"
	"testing"
	"time"

	"github.com/alfred/backend/internal/domain/billing"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testURLs = RedirectURLs{
	SuccessURL:      "https://app.example.com/billing?ok=1",
	CancelURL:       "https://app.example.com/billing",
	PortalReturnURL: "https://app.example.com/settings",
}

func newSubscriptionService(users *mockUserRepository, payments *mockPaymentProvider) *SubscriptionService {
	plans := billing.NewCatalogue(billing.PriceIDs{
		"pro_monthly":  "price_pro_m",
		"pro_yearly":   "price_pro_y",
		"team_monthly": "price_team_m",
	})
	return NewSubscriptionService(users, plans, payments, testURLs, zap.NewNop())
}

func TestSubscriptionService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer then subscription session", func(t *testing.T) {
		user := newUser(t)
		users := new(mockUserRepository)
		payments := new(mockPaymentProvider)
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("Save", ctx, user).Return(nil).Once()
		payments.On("CreateCustomer", ctx, "user@example.com", "User", user.ID.String()).Return("cus_1", nil)
		payments.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(req integration.CheckoutRequest) bool {
			return req.Mode == integration.CheckoutSubscription &&
				req.CustomerID == "cus_1" &&
				req.PriceID == "price_pro_y" &&
				req.SuccessURL == testURLs.SuccessURL &&
				req.Metadata["plan"] == "pro"
		})).Return(&integration.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/cs_1"}, nil)

		out, err := newSubscriptionService(users, payments).Checkout(ctx, user.ID, CheckoutInput{Plan: "pro", Interval: billing.Yearly})
		require.NoError(t, err)
		assert.Equal(t, "cs_1", out.SessionID)
		assert.Equal(t, "cus_1", user.StripeCustomerID)
		payments.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("reuses existing customer and defaults to monthly", func(t *testing.T) {
		user := newUser(t)
		user.SetStripeCustomer("cus_9")
		users := new(mockUserRepository)
		payments := new(mockPaymentProvider)
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		payments.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(req integration.CheckoutRequest) bool {
			return req.CustomerID == "cus_9" && req.PriceID == "price_team_m"
		})).Return(&integration.CheckoutSession{ID: "cs_2", URL: "u"}, nil)

		_, err := newSubscriptionService(users, payments).Checkout(ctx, user.ID, CheckoutInput{Plan: "team"})
		require.NoError(t, err)
		payments.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unconfigured price before any provider call", func(t *testing.T) {
		users := new(mockUserRepository)
		payments := new(mockPaymentProvider)

		_, err := newSubscriptionService(users, payments).Checkout(ctx, newUser(t).ID, CheckoutInput{Plan: "team", Interval: billing.Yearly})
		assert.ErrorIs(t, err, billing.ErrPriceNotConfigured)

		_, err = newSubscriptionService(users, payments).Checkout(ctx, newUser(t).ID, CheckoutInput{Plan: "free"})
		assert.ErrorIs(t, err, billing.ErrFreePlanHasNoPrice)
		payments.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})
}

func TestSubscriptionService_Portal(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a billing account", func(t *testing.T) {
		user := newUser(t)
		users := new(mockUserRepository)
		users.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := newSubscriptionService(users, new(mockPaymentProvider)).Portal(ctx, user.ID)
		assert.ErrorIs(t, err, ErrNoBillingAccount)
	})

	t.Run("returns portal url", func(t *testing.T) {
		user := newUser(t)
		user.SetStripeCustomer("cus_1")
		users := new(mockUserRepository)
		payments := new(mockPaymentProvider)
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		payments.On("CreatePortalSession", ctx, "cus_1", testURLs.PortalReturnURL).Return("https://billing.stripe.com/p/1", nil)

		url, err := newSubscriptionService(users, payments).Portal(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://billing.stripe.com/p/1", url)
	})
}

func TestSubscriptionService_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("applies active subscription plan", func(t *testing.T) {
		user := newUser(t)
		user.SetStripeCustomer("cus_1")
		renews := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		users := new(mockUserRepository)
		payments := new(mockPaymentProvider)
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("Save", ctx, user).Return(nil)
		payments.On("CurrentSubscription", ctx, "cus_1").Return(&integration.Subscription{
			ID: "sub_1", PriceID: "price_pro_m", Status: "active", CurrentPeriodEnd: &renews,
		}, nil)

		out, err := newSubscriptionService(users, payments).Sync(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PlanPro, out.Plan)
		assert.Equal(t, 1000, out.Limits.MessagesPerDay)
		assert.Equal(t, &renews, out.RenewsAt)
	})

	t.Run("no subscription falls back to free", func(t *testing.T) {
		user := newUser(t)
		user.SetStripeCustomer("cus_1")
		user.ApplySubscription(billing.PlanPro, "sub_old", identity.SubscriptionActive, nil)
		users := new(mockUserRepository)
		payments := new(mockPaymentProvider)
		users.On("FindByID", ctx, user.ID).Return(user, nil)
		users.On("Save", ctx, user).Return(nil)
		payments.On("CurrentSubscription", ctx, "cus_1").Return(nil, integration.ErrProviderNotFound)

		out, err := newSubscriptionService(users, payments).Sync(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.PlanFree, out.Plan)
		assert.Empty(t, user.StripeSubscriptionID)
	})

	t.Run("without customer does not call provider", func(t *testing.T) {
		user := newUser(t)
		users := new(mockUserRepository)
		payments := new(mockPaymentProvider)
		users.On("FindByID", ctx, user.ID).Return(user, nil)

		out, err := newSubscriptionService(users, payments).Sync(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, out.HasCustomer)
		payments.AssertNotCalled(t, "CurrentSubscription", mock.Anything, mock.Anything)
	})
}
