// Package event dispatches domain events to in-process handlers and forwards them to Kafka.
package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/alfred/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with in-memory pub/sub
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler
	async    bool
	logger   *zap.Logger
	stopped  atomic.Bool
	wg       sync.WaitGroup
}

// BusOption configures the bus
type BusOption func(*InMemoryEventBus)

// WithAsyncDispatch runs handlers on their own goroutine so Publish never
// waits on slow handlers such as email delivery. Stop waits for them.
func WithAsyncDispatch() BusOption {
	return func(b *InMemoryEventBus) {
		b.async = true
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events to every matching handler. Handler errors are logged, never returned.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			if !b.async {
				b.dispatch(ctx, handler, event)
				continue
			}
			b.wg.Add(1)
			go func(h shared.EventHandler, e shared.DomainEvent) {
				defer b.wg.Done()
				// the request context may be gone by the time the handler runs
				b.dispatch(context.WithoutCancel(ctx), h, e)
			}(handler, event)
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; an empty list subscribes to everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, handler)
	}
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("event bus started", zap.Bool("async", b.async))
	return nil
}

// Stop waits for in-flight handlers or until ctx is done
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	typed := b.handlers[eventType]
	out := make([]shared.EventHandler, 0, len(typed)+len(b.wildcard))
	out = append(out, typed...)
	return append(out, b.wildcard...)
}

// dispatch runs one handler, recovering panics
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		b.logger.Error("handler failed to process event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
