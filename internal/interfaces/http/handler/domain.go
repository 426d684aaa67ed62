package handler

import (
	"context"

	registrarapp "github.com/alfred/backend/internal/application/registrar"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegistrarService is the domain purchase use case surface the handler needs
type RegistrarService interface {
	Check(ctx context.Context, name string) (*registrarapp.QuoteDTO, error)
	Suggest(ctx context.Context, query string) ([]registrarapp.QuoteDTO, error)
	Checkout(ctx context.Context, ownerID uuid.UUID, input registrarapp.CheckoutInput) (*registrarapp.CheckoutDTO, error)
	Confirm(ctx context.Context, ownerID, purchaseID uuid.UUID) (*registrarapp.PurchaseDTO, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]registrarapp.PurchaseDTO, error)
}

// DomainHandler handles domain search and purchase
type DomainHandler struct {
	BaseHandler
	registrar RegistrarService
}

// NewDomainHandler creates a new DomainHandler
func NewDomainHandler(registrar RegistrarService) *DomainHandler {
	return &DomainHandler{registrar: registrar}
}

// Check godoc
// @Summary      Check a domain
// @Description  Availability and marked-up price of one domain
// @Tags         domains
// @Produce      json
// @Param        name query string true "Domain name" example(example.com)
// @Success      200 {object} APIResponse[registrarapp.QuoteDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /domains/check [get]
func (h *DomainHandler) Check(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		h.BadRequest(c, "name is required")
		return
	}
	quote, err := h.registrar.Check(c.Request.Context(), name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, quote)
}

// Suggest godoc
// @Summary      Suggest domains
// @Description  Checks the sanitized label across the supported TLDs
// @Tags         domains
// @Produce      json
// @Param        q query string true "Search term"
// @Success      200 {object} APIResponse[[]registrarapp.QuoteDTO]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /domains/suggest [get]
func (h *DomainHandler) Suggest(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		h.BadRequest(c, "q is required")
		return
	}
	quotes, err := h.registrar.Suggest(c.Request.Context(), q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if quotes == nil {
		quotes = []registrarapp.QuoteDTO{}
	}
	h.Success(c, quotes)
}

// Checkout godoc
// @Summary      Start a domain purchase
// @Description  Re-checks availability, records a pending purchase and opens a payment session
// @Tags         domains
// @Accept       json
// @Produce      json
// @Param        request body registrarapp.CheckoutInput true "Domain"
// @Success      201 {object} APIResponse[registrarapp.CheckoutDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Domain is not available"
// @Security     BearerAuth
// @Router       /domains/checkout [post]
func (h *DomainHandler) Checkout(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req registrarapp.CheckoutInput
	if !h.bindJSON(c, &req) {
		return
	}
	out, err := h.registrar.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, out)
}

// Confirm godoc
// @Summary      Confirm a domain purchase
// @Description  Verifies payment and registers the domain. Safe to call again.
// @Tags         domains
// @Produce      json
// @Param        id path string true "Purchase ID" format(uuid)
// @Success      200 {object} APIResponse[registrarapp.PurchaseDTO]
// @Failure      402 {object} ErrorResponse "Payment not completed"
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /domains/purchases/{id}/confirm [post]
func (h *DomainHandler) Confirm(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.registrar.Confirm(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// ListPurchases godoc
// @Summary      List domain purchases
// @Tags         domains
// @Produce      json
// @Success      200 {object} APIResponse[[]registrarapp.PurchaseDTO]
// @Security     BearerAuth
// @Router       /domains/purchases [get]
func (h *DomainHandler) ListPurchases(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	items, err := h.registrar.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if items == nil {
		items = []registrarapp.PurchaseDTO{}
	}
	h.Success(c, items)
}
