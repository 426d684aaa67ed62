package handler

import (
	"context"

	artifactapp "github.com/alfred/backend/internal/application/artifact"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ArtifactService is the artifact use case surface the handler needs
type ArtifactService interface {
	ListLatest(ctx context.Context, ownerID, conversationID uuid.UUID) ([]artifactapp.ArtifactDTO, error)
	Versions(ctx context.Context, ownerID, conversationID uuid.UUID, key string) ([]artifactapp.ArtifactDTO, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*artifactapp.ArtifactDTO, error)
	Create(ctx context.Context, ownerID uuid.UUID, input artifactapp.CreateArtifactInput) (*artifactapp.ArtifactDTO, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Extract(input artifactapp.ExtractInput) []artifactapp.ExtractedBlockDTO
}

// ArtifactHandler handles versioned code artifacts
type ArtifactHandler struct {
	BaseHandler
	artifacts ArtifactService
}

// NewArtifactHandler creates a new ArtifactHandler
func NewArtifactHandler(artifacts ArtifactService) *ArtifactHandler {
	return &ArtifactHandler{artifacts: artifacts}
}

// ListByConversation godoc
// @Summary      List artifacts of a conversation
// @Description  Without key: the latest version of every artifact. With key: all versions of that artifact, newest first.
// @Tags         artifacts
// @Produce      json
// @Param        id path string true "Conversation ID" format(uuid)
// @Param        key query string false "Artifact key"
// @Success      200 {object} APIResponse[[]artifactapp.ArtifactDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/artifacts [get]
func (h *ArtifactHandler) ListByConversation(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	convID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var (
		items []artifactapp.ArtifactDTO
		err   error
	)
	if key := c.Query("key"); key != "" {
		items, err = h.artifacts.Versions(c.Request.Context(), userID, convID, key)
	} else {
		items, err = h.artifacts.ListLatest(c.Request.Context(), userID, convID)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if items == nil {
		items = []artifactapp.ArtifactDTO{}
	}
	h.Success(c, items)
}

// Get godoc
// @Summary      Get an artifact version
// @Tags         artifacts
// @Produce      json
// @Param        id path string true "Artifact ID" format(uuid)
// @Success      200 {object} APIResponse[artifactapp.ArtifactDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /artifacts/{id} [get]
func (h *ArtifactHandler) Get(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.artifacts.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, a)
}

// Create godoc
// @Summary      Create an artifact version
// @Description  Stores a new version under the key, one above the current latest
// @Tags         artifacts
// @Accept       json
// @Produce      json
// @Param        request body artifactapp.CreateArtifactInput true "Artifact"
// @Success      201 {object} APIResponse[artifactapp.ArtifactDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /artifacts [post]
func (h *ArtifactHandler) Create(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req artifactapp.CreateArtifactInput
	if !h.bindJSON(c, &req) {
		return
	}
	a, err := h.artifacts.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, a)
}

// Delete godoc
// @Summary      Delete an artifact version
// @Tags         artifacts
// @Param        id path string true "Artifact ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /artifacts/{id} [delete]
func (h *ArtifactHandler) Delete(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.artifacts.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Extract godoc
// @Summary      Extract code blocks
// @Description  Parses fenced code blocks out of markdown without storing anything
// @Tags         artifacts
// @Accept       json
// @Produce      json
// @Param        request body artifactapp.ExtractInput true "Markdown"
// @Success      200 {object} APIResponse[[]artifactapp.ExtractedBlockDTO]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /artifacts/extract [post]
func (h *ArtifactHandler) Extract(c *gin.Context) {
	var req artifactapp.ExtractInput
	if !h.bindJSON(c, &req) {
		return
	}
	blocks := h.artifacts.Extract(req)
	if blocks == nil {
		blocks = []artifactapp.ExtractedBlockDTO{}
	}
	h.Success(c, blocks)
}
