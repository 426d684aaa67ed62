package handler

import (
	"context"

	builderapp "github.com/alfred/backend/internal/application/builder"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectService is the builder use case surface the handler needs
type ProjectService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[builderapp.ProjectDTO], error)
	Create(ctx context.Context, ownerID uuid.UUID, input builderapp.CreateProjectInput) (*builderapp.ProjectDTO, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*builderapp.ProjectDTO, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input builderapp.UpdateProjectInput) (*builderapp.ProjectDTO, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ReplaceFiles(ctx context.Context, ownerID, id uuid.UUID, input builderapp.ReplaceFilesInput) (*builderapp.ProjectDTO, error)
	UpsertFile(ctx context.Context, ownerID, id uuid.UUID, input builderapp.UpsertFileInput) (*builderapp.ProjectDTO, error)
	DeleteFile(ctx context.Context, ownerID, id uuid.UUID, filePath string) (*builderapp.ProjectDTO, error)
	Generate(ctx context.Context, ownerID, id uuid.UUID, input builderapp.GenerateInput) (*builderapp.GenerateResultDTO, error)
	CreateFromArtifacts(ctx context.Context, ownerID uuid.UUID, input builderapp.FromArtifactsInput) (*builderapp.ProjectDTO, error)
}

// ProjectHandler handles builder projects and their files
type ProjectHandler struct {
	BaseHandler
	projects ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projects ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List godoc
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Name search"
// @Success      200 {object} APIResponse[[]builderapp.ProjectDTO]
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	page, err := h.projects.List(c.Request.Context(), userID, req.ToFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	Paginated(c, page)
}

// Create godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body builderapp.CreateProjectInput true "Project"
// @Success      201 {object} APIResponse[builderapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse "Plan project limit reached"
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req builderapp.CreateProjectInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, p)
}

// CreateFromArtifacts godoc
// @Summary      Create a project from artifacts
// @Description  Seeds a project with the latest version of every artifact in a conversation
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body builderapp.FromArtifactsInput true "Source conversation"
// @Success      201 {object} APIResponse[builderapp.ProjectDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Conversation has no artifacts"
// @Security     BearerAuth
// @Router       /projects/from-artifacts [post]
func (h *ProjectHandler) CreateFromArtifacts(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req builderapp.FromArtifactsInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.CreateFromArtifacts(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, p)
}

// Get godoc
// @Summary      Get a project with its files
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[builderapp.ProjectDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// Update godoc
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body builderapp.UpdateProjectInput true "Fields to change"
// @Success      200 {object} APIResponse[builderapp.ProjectDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req builderapp.UpdateProjectInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete godoc
// @Summary      Delete a project
// @Tags         projects
// @Param        id path string true "Project ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// ReplaceFiles godoc
// @Summary      Replace all project files
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body builderapp.ReplaceFilesInput true "Complete file set"
// @Success      200 {object} APIResponse[builderapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/files [put]
func (h *ProjectHandler) ReplaceFiles(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req builderapp.ReplaceFilesInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.ReplaceFiles(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// UpsertFile godoc
// @Summary      Create or overwrite one file
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body builderapp.UpsertFileInput true "File"
// @Success      200 {object} APIResponse[builderapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/files [post]
func (h *ProjectHandler) UpsertFile(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req builderapp.UpsertFileInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.projects.UpsertFile(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// DeleteFile godoc
// @Summary      Delete one file
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        path query string true "File path"
// @Success      200 {object} APIResponse[builderapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/files [delete]
func (h *ProjectHandler) DeleteFile(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	path := c.Query("path")
	if path == "" {
		h.BadRequest(c, "path is required")
		return
	}
	p, err := h.projects.DeleteFile(c.Request.Context(), userID, id, path)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// Generate godoc
// @Summary      Generate files from a prompt
// @Description  Asks the model for files and merges them into the project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body builderapp.GenerateInput true "Prompt"
// @Success      200 {object} APIResponse[builderapp.GenerateResultDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Model returned no files"
// @Failure      429 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/generate [post]
func (h *ProjectHandler) Generate(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req builderapp.GenerateInput
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.projects.Generate(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
