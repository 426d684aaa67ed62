package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alfred/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, ownerID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Deployment", uuid.New(), ownerID),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := newTestHandler("deployment.succeeded")
	bus.Subscribe(handler, "deployment.succeeded")

	event := newTestEvent("deployment.succeeded", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := newTestHandler("deployment.succeeded")
	bus.Subscribe(handler, "deployment.succeeded")

	event1 := newTestEvent("deployment.succeeded", uuid.New())
	event2 := newTestEvent("deployment.succeeded", uuid.New())
	err := bus.Publish(context.Background(), event1, event2)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler1 := newTestHandler("deployment.succeeded")
	handler2 := newTestHandler("deployment.succeeded")
	bus.Subscribe(handler1, "deployment.succeeded")
	bus.Subscribe(handler2, "deployment.succeeded")

	event := newTestEvent("deployment.succeeded", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	wildcardHandler := newTestHandler() // No event types = wildcard
	bus.Subscribe(wildcardHandler)

	event := newTestEvent("persona.rendered", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, wildcardHandler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler1 := newTestHandler("deployment.succeeded")
	handler1.setError(errors.New("handler error"))
	handler2 := newTestHandler("deployment.succeeded")
	bus.Subscribe(handler1, "deployment.succeeded")
	bus.Subscribe(handler2, "deployment.succeeded")

	event := newTestEvent("deployment.succeeded", uuid.New())
	err := bus.Publish(context.Background(), event)

	// Should not return error, but continue with other handlers
	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := newTestHandler("domain.purchased")
	bus.Subscribe(handler, "domain.purchased")

	event := newTestEvent("deployment.succeeded", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 0)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	ctx := context.Background()
	err := bus.Start(ctx)
	require.NoError(t, err)

	// Can still publish after start
	handler := newTestHandler("deployment.succeeded")
	bus.Subscribe(handler, "deployment.succeeded")
	event := newTestEvent("deployment.succeeded", uuid.New())
	err = bus.Publish(ctx, event)
	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = bus.Stop(ctx)
	require.NoError(t, err)
}

func TestInMemoryEventBus_AsyncDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch())
	require.NoError(t, bus.Start(context.Background()))

	handler := newTestHandler("deployment.succeeded")
	bus.Subscribe(handler)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newTestEvent("deployment.succeeded", uuid.New())))
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, bus.Stop(stopCtx))
	assert.Len(t, handler.getHandled(), 1)

	// stopped bus drops events
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("deployment.succeeded", uuid.New())))
	assert.Len(t, handler.getHandled(), 1)
}

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panickingHandler) EventTypes() []string                             { return nil }

func TestInMemoryEventBus_RecoversPanics(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(panickingHandler{})
	after := newTestHandler()
	bus.Subscribe(after)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("domain.purchased", uuid.New()))
	})
	assert.Len(t, after.getHandled(), 1)
}
