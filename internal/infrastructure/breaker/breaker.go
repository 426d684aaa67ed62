// Package breaker wraps sony/gobreaker for outbound provider calls.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alfred/backend/internal/domain/integration"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Config holds configuration for a circuit breaker
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig returns the settings used for provider clients
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// Breaker guards calls to one provider
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a breaker. Only errors wrapping integration.ErrProviderUnavailable
// count as failures; client errors and cancellations do not.
func New(cfg Config, log *zap.Logger) *Breaker {
	if log == nil {
		log = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, integration.ErrProviderUnavailable)
		},
	})
	return &Breaker{cb: cb}
}

// Do runs fn through the breaker
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s circuit %s", integration.ErrProviderUnavailable, b.cb.Name(), err)
	}
	return err
}

// State returns the breaker state name (closed, half-open, open)
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Transport classifies a transport-level error from an HTTP client call
func Transport(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", integration.ErrProviderUnavailable, err)
}
