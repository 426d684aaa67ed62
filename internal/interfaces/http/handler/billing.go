package handler

import (
	"context"

	billingapp "github.com/alfred/backend/internal/application/billing"
	"github.com/alfred/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubscriptionService is the billing use case surface the handler needs
type SubscriptionService interface {
	Plans() []billing.Plan
	GetSubscription(ctx context.Context, userID uuid.UUID) (*billingapp.SubscriptionDTO, error)
	Checkout(ctx context.Context, userID uuid.UUID, input billingapp.CheckoutInput) (*billingapp.CheckoutDTO, error)
	Portal(ctx context.Context, userID uuid.UUID) (string, error)
	Sync(ctx context.Context, userID uuid.UUID) (*billingapp.SubscriptionDTO, error)
}

// BillingHandler handles plans and Stripe subscriptions
type BillingHandler struct {
	BaseHandler
	subscriptions SubscriptionService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(subscriptions SubscriptionService) *BillingHandler {
	return &BillingHandler{subscriptions: subscriptions}
}

// CheckoutRequest represents a subscription checkout
// @Description Plan and billing interval to subscribe to
type CheckoutRequest struct {
	Plan     string `json:"plan" binding:"required,oneof=pro team" example:"pro"`
	Interval string `json:"interval" binding:"omitempty,oneof=monthly yearly" example:"monthly"`
}

// Plans godoc
// @Summary      List plans
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[[]billing.Plan]
// @Security     BearerAuth
// @Router       /billing/plans [get]
func (h *BillingHandler) Plans(c *gin.Context) {
	h.Success(c, h.subscriptions.Plans())
}

// Subscription godoc
// @Summary      Get the caller's subscription
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[billingapp.SubscriptionDTO]
// @Security     BearerAuth
// @Router       /billing/subscription [get]
func (h *BillingHandler) Subscription(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	sub, err := h.subscriptions.GetSubscription(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sub)
}

// Checkout godoc
// @Summary      Start a subscription checkout
// @Description  Creates the billing customer if needed and returns a hosted checkout URL
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Plan"
// @Success      201 {object} APIResponse[billingapp.CheckoutDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Price not configured"
// @Security     BearerAuth
// @Router       /billing/checkout [post]
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	interval := billing.Monthly
	if req.Interval != "" {
		interval = billing.Interval(req.Interval)
	}
	out, err := h.subscriptions.Checkout(c.Request.Context(), userID, billingapp.CheckoutInput{
		Plan:     req.Plan,
		Interval: interval,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, out)
}

// Portal godoc
// @Summary      Open the billing portal
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[URLData]
// @Failure      422 {object} ErrorResponse "No billing account yet"
// @Security     BearerAuth
// @Router       /billing/portal [post]
func (h *BillingHandler) Portal(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	url, err := h.subscriptions.Portal(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, URLData{URL: url})
}

// Sync godoc
// @Summary      Refresh the subscription
// @Description  Re-reads the subscription from Stripe and updates the caller's plan
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[billingapp.SubscriptionDTO]
// @Security     BearerAuth
// @Router       /billing/sync [post]
func (h *BillingHandler) Sync(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	sub, err := h.subscriptions.Sync(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, sub)
}
