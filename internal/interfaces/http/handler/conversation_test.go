package handler

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	chatapp "github.com/alfred/backend/internal/application/chat"
	"github.com/alfred/backend/internal/domain/integration"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	Name string
	Data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.Name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.Data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if cur.Name != "" {
				events = append(events, cur)
			}
			cur = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func conversationRouter(userID uuid.UUID, convs *mockConversationService, msgs *mockMessageSender, streams StreamObserver) *gin.Engine {
	h := NewConversationHandler(convs, msgs, streams)
	router := testRouter(userID)
	router.GET("/conversations", h.List)
	router.POST("/conversations", h.Create)
	router.GET("/conversations/:id", h.Get)
	router.PATCH("/conversations/:id", h.Update)
	router.DELETE("/conversations/:id", h.Delete)
	router.GET("/conversations/:id/messages", h.ListMessages)
	router.POST("/conversations/:id/messages", h.SendMessage)
	return router
}

func TestConversationHandler_List(t *testing.T) {
	userID := uuid.New()
	convs := new(mockConversationService)
	items := []chatapp.ConversationDTO{{ID: uuid.New(), Title: "Landing page"}}
	convs.On("List", mock.Anything, userID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 5 && f.Search == "landing"
	})).Return(shared.NewPaginated(items, 6, 2, 5), nil)

	w := doRequest(conversationRouter(userID, convs, nil, nil), http.MethodGet, "/conversations?page=2&page_size=5&search=landing", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(6), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	convs.AssertExpectations(t)
}

func TestConversationHandler_Create(t *testing.T) {
	userID := uuid.New()

	t.Run("rejects unknown facet", func(t *testing.T) {
		w := doRequest(conversationRouter(userID, new(mockConversationService), nil, nil),
			http.MethodPost, "/conversations", map[string]any{"facet": "poet"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
	})

	t.Run("creates", func(t *testing.T) {
		convs := new(mockConversationService)
		input := chatapp.CreateConversationInput{Title: "Hi", Facet: "mentor"}
		convs.On("Create", mock.Anything, userID, input).
			Return(&chatapp.ConversationDTO{ID: uuid.New(), Title: "Hi", Facet: "mentor"}, nil)

		w := doRequest(conversationRouter(userID, convs, nil, nil), http.MethodPost, "/conversations", input)
		assert.Equal(t, http.StatusCreated, w.Code)
		convs.AssertExpectations(t)
	})
}

func TestConversationHandler_GetNotOwned(t *testing.T) {
	userID, convID := uuid.New(), uuid.New()
	convs := new(mockConversationService)
	convs.On("Get", mock.Anything, userID, convID).Return(nil, shared.ErrNotFound)

	w := doRequest(conversationRouter(userID, convs, nil, nil), http.MethodGet, "/conversations/"+convID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversationHandler_Delete(t *testing.T) {
	userID, convID := uuid.New(), uuid.New()
	convs := new(mockConversationService)
	convs.On("Delete", mock.Anything, userID, convID).Return(nil)

	w := doRequest(conversationRouter(userID, convs, nil, nil), http.MethodDelete, "/conversations/"+convID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestConversationHandler_SendMessage(t *testing.T) {
	userID, convID := uuid.New(), uuid.New()
	input := chatapp.SendMessageInput{Content: "Build me a landing page"}
	path := "/conversations/" + convID.String() + "/messages"

	t.Run("streams tokens then done", func(t *testing.T) {
		turn := &chatapp.Turn{}
		msgs := &mockMessageSender{tokens: []string{"Hel", "lo"}}
		msgs.On("Prepare", mock.Anything, userID, convID, input).Return(turn, nil)
		msgs.On("Reply", mock.Anything, turn).Return(&chatapp.ReplyDTO{
			Message: chatapp.MessageDTO{ID: uuid.New(), Role: "assistant", Content: "Hello", CreatedAt: time.Now()},
		}, nil)
		streams := &fakeStreams{}

		w := doRequest(conversationRouter(userID, nil, msgs, streams), http.MethodPost, path, input)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		events := parseSSE(t, w.Body.String())
		require.Len(t, events, 3)
		assert.Equal(t, EventToken, events[0].Name)
		assert.JSONEq(t, `{"delta":"Hel"}`, events[0].Data)
		assert.Equal(t, EventToken, events[1].Name)
		assert.Equal(t, EventDone, events[2].Name)

		var reply chatapp.ReplyDTO
		require.NoError(t, json.Unmarshal([]byte(events[2].Data), &reply))
		assert.Equal(t, "Hello", reply.Message.Content)

		assert.Equal(t, 1, streams.started)
		assert.Equal(t, 1, streams.finished)
	})

	t.Run("prepare failure is plain json", func(t *testing.T) {
		msgs := &mockMessageSender{}
		msgs.On("Prepare", mock.Anything, userID, convID, input).Return(nil, shared.ErrQuotaExceeded)

		w := doRequest(conversationRouter(userID, nil, msgs, nil), http.MethodPost, path, input)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, dto.ErrCodeQuotaExceeded, errorCode(t, w))
		msgs.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything)
	})

	t.Run("reply failure ends with error event", func(t *testing.T) {
		turn := &chatapp.Turn{}
		msgs := &mockMessageSender{tokens: []string{"partial"}}
		msgs.On("Prepare", mock.Anything, userID, convID, input).Return(turn, nil)
		msgs.On("Reply", mock.Anything, turn).Return(nil, integration.ErrProviderUnavailable)

		w := doRequest(conversationRouter(userID, nil, msgs, nil), http.MethodPost, path, input)

		require.Equal(t, http.StatusOK, w.Code)
		events := parseSSE(t, w.Body.String())
		require.Len(t, events, 2)
		assert.Equal(t, EventError, events[1].Name)

		var payload StreamErrorEvent
		require.NoError(t, json.Unmarshal([]byte(events[1].Data), &payload))
		assert.Equal(t, dto.ErrCodeUpstreamUnavailable, payload.Code)
		assert.NotEmpty(t, payload.RequestID)
	})

	t.Run("empty content never reaches the service", func(t *testing.T) {
		msgs := &mockMessageSender{}
		w := doRequest(conversationRouter(userID, nil, msgs, nil), http.MethodPost, path, map[string]string{"content": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		msgs.AssertNotCalled(t, "Prepare", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
