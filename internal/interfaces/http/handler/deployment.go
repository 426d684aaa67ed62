package handler

import (
	"context"
	"strconv"

	deploymentapp "github.com/alfred/backend/internal/application/deployment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultDeploymentListLimit = 20

// DeploymentService is the deployment use case surface the handler needs
type DeploymentService interface {
	Start(ctx context.Context, ownerID, projectID uuid.UUID, input deploymentapp.StartInput) (*deploymentapp.DeploymentDTO, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*deploymentapp.DeploymentDTO, error)
	ListByProject(ctx context.Context, ownerID, projectID uuid.UUID, limit int) ([]deploymentapp.DeploymentDTO, error)
}

// DeploymentHandler starts and reports Vercel deployments
type DeploymentHandler struct {
	BaseHandler
	deployments DeploymentService
}

// NewDeploymentHandler creates a new DeploymentHandler
func NewDeploymentHandler(deployments DeploymentService) *DeploymentHandler {
	return &DeploymentHandler{deployments: deployments}
}

// Start godoc
// @Summary      Deploy a project
// @Description  Queues a deployment and returns immediately. Poll the deployment for progress;
// @Description  failed builds are retried with model-suggested fixes when auto_fix is on.
// @Tags         deployments
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body deploymentapp.StartInput false "Options"
// @Success      202 {object} APIResponse[deploymentapp.DeploymentDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "A deployment is already running"
// @Failure      422 {object} ErrorResponse "Project has no files"
// @Failure      429 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/deployments [post]
func (h *DeploymentHandler) Start(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req deploymentapp.StartInput
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	d, err := h.deployments.Start(c.Request.Context(), userID, projectID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Accepted(c, d)
}

// ListByProject godoc
// @Summary      List deployments of a project
// @Tags         deployments
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        limit query int false "Maximum items" default(20)
// @Success      200 {object} APIResponse[[]deploymentapp.DeploymentDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/deployments [get]
func (h *DeploymentHandler) ListByProject(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	projectID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	limit := defaultDeploymentListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			h.BadRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	items, err := h.deployments.ListByProject(c.Request.Context(), userID, projectID, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if items == nil {
		items = []deploymentapp.DeploymentDTO{}
	}
	h.Success(c, items)
}

// Get godoc
// @Summary      Get a deployment
// @Tags         deployments
// @Produce      json
// @Param        id path string true "Deployment ID" format(uuid)
// @Success      200 {object} APIResponse[deploymentapp.DeploymentDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /deployments/{id} [get]
func (h *DeploymentHandler) Get(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.deployments.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, d)
}
