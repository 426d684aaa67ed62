package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	chatapp "github.com/alfred/backend/internal/application/chat"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/logger"
	"github.com/alfred/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversationService is the conversation use case surface the handler needs
type ConversationService interface {
	List(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (shared.Paginated[chatapp.ConversationDTO], error)
	Create(ctx context.Context, ownerID uuid.UUID, input chatapp.CreateConversationInput) (*chatapp.ConversationDTO, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*chatapp.ConversationDTO, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input chatapp.UpdateConversationInput) (*chatapp.ConversationDTO, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListMessages(ctx context.Context, ownerID, id uuid.UUID) ([]chatapp.MessageDTO, error)
}

// MessageSender runs one chat turn in two phases: Prepare may fail with a
// normal JSON error, Reply streams
type MessageSender interface {
	Prepare(ctx context.Context, ownerID, convID uuid.UUID, input chatapp.SendMessageInput) (*chatapp.Turn, error)
	Reply(ctx context.Context, turn *chatapp.Turn, onToken integration.TokenFunc) (*chatapp.ReplyDTO, error)
}

// StreamObserver tracks open event streams
type StreamObserver interface {
	StreamStarted() func()
}

// SSE event names
const (
	EventToken = "token"
	EventDone  = "done"
	EventError = "error"
)

// ConversationHandler handles conversation and message endpoints
type ConversationHandler struct {
	BaseHandler
	conversations ConversationService
	messages      MessageSender
	streams       StreamObserver
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(conversations ConversationService, messages MessageSender, streams StreamObserver) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, messages: messages, streams: streams}
}

// TokenEvent is the payload of a token event
// @Description Streamed text delta
type TokenEvent struct {
	Delta string `json:"delta"`
}

// StreamErrorEvent is the payload of an error event
// @Description Error raised after streaming started
type StreamErrorEvent struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// List godoc
// @Summary      List conversations
// @Description  Pinned conversations first, then by last activity
// @Tags         conversations
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Title search"
// @Success      200 {object} APIResponse[[]chatapp.ConversationDTO]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	page, err := h.conversations.List(c.Request.Context(), userID, req.ToFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	Paginated(c, page)
}

// Create godoc
// @Summary      Create a conversation
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Param        request body chatapp.CreateConversationInput true "Conversation"
// @Success      201 {object} APIResponse[chatapp.ConversationDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req chatapp.CreateConversationInput
	if !h.bindJSON(c, &req) {
		return
	}
	conv, err := h.conversations.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, conv)
}

// Get godoc
// @Summary      Get a conversation with its messages
// @Tags         conversations
// @Produce      json
// @Param        id path string true "Conversation ID" format(uuid)
// @Success      200 {object} APIResponse[chatapp.ConversationDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [get]
func (h *ConversationHandler) Get(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	conv, err := h.conversations.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, conv)
}

// Update godoc
// @Summary      Update a conversation
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Param        id path string true "Conversation ID" format(uuid)
// @Param        request body chatapp.UpdateConversationInput true "Fields to change"
// @Success      200 {object} APIResponse[chatapp.ConversationDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [patch]
func (h *ConversationHandler) Update(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req chatapp.UpdateConversationInput
	if !h.bindJSON(c, &req) {
		return
	}
	conv, err := h.conversations.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, conv)
}

// Delete godoc
// @Summary      Delete a conversation
// @Tags         conversations
// @Param        id path string true "Conversation ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.conversations.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// ListMessages godoc
// @Summary      List messages
// @Description  Messages of a conversation in chronological order
// @Tags         conversations
// @Produce      json
// @Param        id path string true "Conversation ID" format(uuid)
// @Success      200 {object} APIResponse[[]chatapp.MessageDTO]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	messages, err := h.conversations.ListMessages(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, messages)
}

// SendMessage godoc
// @Summary      Send a message
// @Description  Streams the assistant reply as Server-Sent Events: "token" events
// @Description  carry text deltas, then a single "done" event carries the persisted
// @Description  turn, or an "error" event ends the stream. Validation, quota and
// @Description  ownership failures are answered as JSON before streaming starts.
// @Tags         conversations
// @Accept       json
// @Produce      text/event-stream
// @Param        id path string true "Conversation ID" format(uuid)
// @Param        request body chatapp.SendMessageInput true "Message"
// @Success      200 {object} chatapp.ReplyDTO "done event payload"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	convID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req chatapp.SendMessageInput
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	turn, err := h.messages.Prepare(ctx, userID, convID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if h.streams != nil {
		defer h.streams.StreamStarted()()
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	reply, err := h.messages.Reply(ctx, turn, func(delta string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return writeEvent(c, EventToken, TokenEvent{Delta: delta})
	})
	if err != nil {
		status, code, message := classifyError(err)
		log := logger.L(ctx).With(zap.String("conversation_id", convID.String()))
		if status == statusClientClosedRequest {
			log.Info("Client left before the reply finished")
			return
		}
		log.Error("Reply stream failed", zap.Error(err), zap.String("code", code))
		if status >= http.StatusInternalServerError {
			captureException(c, err)
		}
		_ = writeEvent(c, EventError, StreamErrorEvent{Code: code, Message: message, RequestID: getRequestID(c)})
		return
	}
	_ = writeEvent(c, EventDone, reply)
}

// writeEvent writes one SSE frame and flushes it
func writeEvent(c *gin.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
