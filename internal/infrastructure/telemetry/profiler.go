package telemetry

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// Profiler wraps the Pyroscope profiler
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
}

// NewProfiler starts continuous profiling when serverAddress is set
func NewProfiler(serverAddress, applicationName string, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}
	if serverAddress == "" {
		return p, nil
	}

	tags := map[string]string{}
	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		tags["hostname"] = hostname
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: applicationName,
		ServerAddress:   serverAddress,
		Logger:          pyroscopeLogger{logger.Sugar()},
		Tags:            tags,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler
	logger.Info("Pyroscope profiler started", zap.String("server_address", serverAddress))
	return p, nil
}

// IsEnabled reports whether profiles are being collected
func (p *Profiler) IsEnabled() bool {
	return p.profiler != nil
}

// Stop flushes and stops profiling
func (p *Profiler) Stop() error {
	if p.profiler == nil {
		return nil
	}
	return p.profiler.Stop()
}

type pyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

// Profiling label keys attached to HTTP requests
const (
	ProfilingLabelRoute  = "route"
	ProfilingLabelMethod = "method"
	ProfilingLabelGroup  = "group"
)

const maxLabelValueLength = 128

// WithProfilingLabels runs fn with pyroscope labels on its goroutine.
// Empty values are dropped and long values truncated.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k != "" && v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		fn(ctx)
		return
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > maxLabelValueLength {
			v = v[:maxLabelValueLength]
		}
		pairs = append(pairs, k, v)
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}
