package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/alfred/backend/internal/infrastructure/logger"
	"github.com/alfred/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx)
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	checks    map[string]Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. checks are probed by Health.
func NewSystemHandler(name, version string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		checks:    checks,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
// @Description Build and runtime information
type SystemInfoResponse struct {
	Name      string `json:"name" example:"alfred"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @Summary      Health check
// @Description  Probes the database and other backing services
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthData
// @Failure      503 {object} HealthData
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	out := HealthData{Status: "ok", Version: h.version, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			logger.L(ctx).Warn("Health check failed", zap.String("check", name), zap.Error(err))
			out.Checks[name] = "error"
			out.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		out.Checks[name] = "ok"
	}
	c.JSON(status, out)
}

// Info godoc
// @Summary      Get system information
// @Description  Returns version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Security     BearerAuth
// @Router       /system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}
