package handler

import (
	"context"

	identityapp "github.com/alfred/backend/internal/application/identity"
	"github.com/alfred/backend/internal/domain/facet"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserService is the identity use case surface the handler needs
type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*identityapp.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input identityapp.UpdateProfileInput) (*identityapp.UserDTO, error)
}

// IdentityHandler serves the caller's profile and the facet catalogue
type IdentityHandler struct {
	BaseHandler
	users  UserService
	facets *facet.Catalogue
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(users UserService, facets *facet.Catalogue) *IdentityHandler {
	return &IdentityHandler{users: users, facets: facets}
}

// UpdateMeRequest represents a profile update
// @Description Editable profile fields; omitted fields are unchanged
type UpdateMeRequest struct {
	Name         string `json:"name" binding:"omitempty,max=100" example:"Ada Lovelace"`
	DefaultFacet string `json:"default_facet" binding:"omitempty,oneof=builder mentor reviewer" example:"mentor"`
}

// GetMe godoc
// @Summary      Get the current user
// @Description  Returns the authenticated user, creating it on first use
// @Tags         identity
// @Produce      json
// @Success      200 {object} APIResponse[identityapp.UserDTO]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /me [get]
func (h *IdentityHandler) GetMe(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	user, err := h.users.GetMe(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateMe godoc
// @Summary      Update the current user
// @Tags         identity
// @Accept       json
// @Produce      json
// @Param        request body UpdateMeRequest true "Profile fields"
// @Success      200 {object} APIResponse[identityapp.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /me [patch]
func (h *IdentityHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req UpdateMeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, identityapp.UpdateProfileInput{
		Name:         req.Name,
		DefaultFacet: req.DefaultFacet,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, user)
}

// ListFacets godoc
// @Summary      List facets
// @Description  Prompt modes a conversation can use
// @Tags         identity
// @Produce      json
// @Success      200 {object} APIResponse[[]facet.Facet]
// @Security     BearerAuth
// @Router       /facets [get]
func (h *IdentityHandler) ListFacets(c *gin.Context) {
	h.Success(c, h.facets.List())
}
