package telemetry

import (
	"fmt"
	"time"

	"github.com/alfred/backend/internal/infrastructure/config"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// InitSentry configures the global Sentry hub. It returns a flush function;
// without a DSN both are no-ops.
func InitSentry(cfg config.SentryConfig, release string, logger *zap.Logger) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, fmt.Errorf("sentry init: %w", err)
	}
	logger.Info("Sentry error reporting enabled", zap.String("environment", cfg.Environment))
	return func() { sentry.Flush(2 * time.Second) }, nil
}
