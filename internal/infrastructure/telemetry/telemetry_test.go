package telemetry

import (
	"context"
	"testing"

	"github.com/alfred/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDisabledProvidersAreNoops(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()
	cfg := config.TelemetryConfig{Enabled: false, ServiceName: "alfred-test"}

	tp, err := NewTracerProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	tp.EnableSpanProfiles()
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, log)
	require.NoError(t, err)
	assert.Same(t, log, lp.Bridge(log, "alfred-test", zapcore.InfoLevel))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler("", "alfred-test", log)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())

	flush, err := InitSentry(config.SentryConfig{}, "dev", log)
	require.NoError(t, err)
	flush()
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestTraceID_Empty(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))
	ctx, span := StartSpan(context.Background(), "test")
	EndSpan(span, nil)
	_ = ctx
}

func TestWithProfilingLabels(t *testing.T) {
	called := 0
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called++ })
	WithProfilingLabels(context.Background(), map[string]string{
		ProfilingLabelRoute:  "/api/v1/projects/:id",
		ProfilingLabelMethod: "GET",
		"empty":              "",
	}, func(ctx context.Context) {
		called++
		assert.NotNil(t, ctx)
	})
	assert.Equal(t, 2, called)
}
