package handler

import (
	"context"

	personaapp "github.com/alfred/backend/internal/application/persona"
	"github.com/alfred/backend/internal/domain/persona"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PersonaService is the persona use case surface the handler needs
type PersonaService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]personaapp.PersonaDTO, error)
	Create(ctx context.Context, ownerID uuid.UUID, input personaapp.CreatePersonaInput) (*personaapp.PersonaDTO, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*personaapp.PersonaDTO, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input personaapp.UpdatePersonaInput) (*personaapp.PersonaDTO, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	GenerateAvatar(ctx context.Context, ownerID, id uuid.UUID, input personaapp.AvatarInput) (*personaapp.PersonaDTO, error)
}

// StudioService is the render job use case surface the handler needs
type StudioService interface {
	Presets() []persona.QualityPreset
	Submit(ctx context.Context, ownerID, personaID uuid.UUID, input personaapp.RenderInput) (*personaapp.RenderJobDTO, error)
	Get(ctx context.Context, ownerID, personaID, jobID uuid.UUID) (*personaapp.RenderJobDTO, error)
	List(ctx context.Context, ownerID, personaID uuid.UUID) ([]personaapp.RenderJobDTO, error)
}

// PersonaHandler handles personas and their studio render jobs
type PersonaHandler struct {
	BaseHandler
	personas PersonaService
	studio   StudioService
}

// NewPersonaHandler creates a new PersonaHandler
func NewPersonaHandler(personas PersonaService, studio StudioService) *PersonaHandler {
	return &PersonaHandler{personas: personas, studio: studio}
}

// List godoc
// @Summary      List personas
// @Tags         personas
// @Produce      json
// @Success      200 {object} APIResponse[[]personaapp.PersonaDTO]
// @Security     BearerAuth
// @Router       /personas [get]
func (h *PersonaHandler) List(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	items, err := h.personas.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if items == nil {
		items = []personaapp.PersonaDTO{}
	}
	h.Success(c, items)
}

// Create godoc
// @Summary      Create a persona
// @Tags         personas
// @Accept       json
// @Produce      json
// @Param        request body personaapp.CreatePersonaInput true "Persona"
// @Success      201 {object} APIResponse[personaapp.PersonaDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse "Plan persona limit reached"
// @Security     BearerAuth
// @Router       /personas [post]
func (h *PersonaHandler) Create(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req personaapp.CreatePersonaInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.personas.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, p)
}

// Get godoc
// @Summary      Get a persona
// @Tags         personas
// @Produce      json
// @Param        id path string true "Persona ID" format(uuid)
// @Success      200 {object} APIResponse[personaapp.PersonaDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /personas/{id} [get]
func (h *PersonaHandler) Get(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.personas.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// Update godoc
// @Summary      Update a persona
// @Tags         personas
// @Accept       json
// @Produce      json
// @Param        id path string true "Persona ID" format(uuid)
// @Param        request body personaapp.UpdatePersonaInput true "Fields to change"
// @Success      200 {object} APIResponse[personaapp.PersonaDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /personas/{id} [patch]
func (h *PersonaHandler) Update(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req personaapp.UpdatePersonaInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.personas.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete godoc
// @Summary      Delete a persona
// @Tags         personas
// @Param        id path string true "Persona ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /personas/{id} [delete]
func (h *PersonaHandler) Delete(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.personas.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// GenerateAvatar godoc
// @Summary      Generate a persona portrait
// @Tags         personas
// @Accept       json
// @Produce      json
// @Param        id path string true "Persona ID" format(uuid)
// @Param        request body personaapp.AvatarInput true "Portrait prompt"
// @Success      200 {object} APIResponse[personaapp.PersonaDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /personas/{id}/avatar [post]
func (h *PersonaHandler) GenerateAvatar(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req personaapp.AvatarInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.personas.GenerateAvatar(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, p)
}

// Presets godoc
// @Summary      List render quality presets
// @Tags         personas
// @Produce      json
// @Success      200 {object} APIResponse[[]persona.QualityPreset]
// @Security     BearerAuth
// @Router       /personas/presets [get]
func (h *PersonaHandler) Presets(c *gin.Context) {
	h.Success(c, h.studio.Presets())
}

// SubmitRender godoc
// @Summary      Submit a render job
// @Description  Queues a lip-sync, full render or batch job on the studio GPU endpoint
// @Tags         personas
// @Accept       json
// @Produce      json
// @Param        id path string true "Persona ID" format(uuid)
// @Param        request body personaapp.RenderInput true "Job"
// @Success      202 {object} APIResponse[personaapp.RenderJobDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Persona has no avatar"
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /personas/{id}/renders [post]
func (h *PersonaHandler) SubmitRender(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req personaapp.RenderInput
	if !h.bindJSON(c, &req) {
		return
	}
	job, err := h.studio.Submit(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Accepted(c, job)
}

// ListRenders godoc
// @Summary      List render jobs of a persona
// @Tags         personas
// @Produce      json
// @Param        id path string true "Persona ID" format(uuid)
// @Success      200 {object} APIResponse[[]personaapp.RenderJobDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /personas/{id}/renders [get]
func (h *PersonaHandler) ListRenders(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	jobs, err := h.studio.List(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if jobs == nil {
		jobs = []personaapp.RenderJobDTO{}
	}
	h.Success(c, jobs)
}

// GetRender godoc
// @Summary      Get a render job
// @Description  Refreshes unfinished jobs from the studio endpoint before answering
// @Tags         personas
// @Produce      json
// @Param        id path string true "Persona ID" format(uuid)
// @Param        jobId path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[personaapp.RenderJobDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /personas/{id}/renders/{jobId} [get]
func (h *PersonaHandler) GetRender(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	jobID, ok := h.pathUUID(c, "jobId")
	if !ok {
		return
	}
	job, err := h.studio.Get(c.Request.Context(), userID, id, jobID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, job)
}
