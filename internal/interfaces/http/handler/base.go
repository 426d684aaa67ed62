package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/logger"
	"github.com/alfred/backend/internal/interfaces/http/dto"
	"github.com/alfred/backend/internal/interfaces/http/middleware"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusClientClosedRequest is logged when the caller went away mid-request
const statusClientClosedRequest = 499

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getUserID returns the caller resolved by the JWT middleware
func getUserID(c *gin.Context) (uuid.UUID, error) {
	id := middleware.GetUserID(c)
	if id == uuid.Nil {
		return uuid.Nil, shared.ErrUnauthorized
	}
	return id, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Paginated sends a page of items with pagination meta
func Paginated[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 accepted response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// bindJSON binds the request body and writes the validation envelope on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathUUID parses a uuid path parameter, answering 400 when malformed
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated user id, answering 401 when missing
func (h *BaseHandler) caller(c *gin.Context) (uuid.UUID, bool) {
	id, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// HandleDomainError converts service errors to HTTP responses. Domain errors
// carry their own code; provider errors map to upstream codes; anything else
// is reported and answered with a generic 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, code, message := classifyError(err)

	log := logger.L(c.Request.Context())
	switch {
	case status == statusClientClosedRequest:
		log.Debug("Request canceled by client", zap.Error(err))
		c.Abort()
		return
	case status >= http.StatusInternalServerError:
		log.Error("Request failed", zap.Error(err), zap.String("code", code))
		captureException(c, err)
	}

	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// classifyError returns the status, code and client-safe message for err
func classifyError(err error) (int, string, string) {
	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		return dto.GetHTTPStatus(code), code, domainErr.Message
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, dto.ErrCodeInternal, "Request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, dto.ErrCodeUpstreamUnavailable, "The request timed out"
	case errors.Is(err, integration.ErrProviderNotConfigured):
		return http.StatusServiceUnavailable, dto.ErrCodeUpstreamUnavailable, "This feature is not configured"
	case errors.Is(err, integration.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, dto.ErrCodeUpstreamUnavailable, "An upstream provider is temporarily unavailable"
	case errors.Is(err, integration.ErrProviderRateLimited):
		return http.StatusTooManyRequests, dto.ErrCodeUpstreamRateLimited, "An upstream provider is rate limiting requests"
	case errors.Is(err, integration.ErrProviderNotFound),
		errors.Is(err, integration.ErrProviderAuthFailed),
		errors.Is(err, integration.ErrProviderRequestFailed),
		errors.Is(err, integration.ErrProviderInvalidResponse):
		return http.StatusBadGateway, dto.ErrCodeUpstream, "An upstream provider request failed"
	}
	return http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"
}

func captureException(c *gin.Context, err error) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}
