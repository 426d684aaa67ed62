package middleware

import (
	"time"

	"github.com/alfred/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// HTTPMetricsConfig holds configuration for HTTP metrics middleware
type HTTPMetricsConfig struct {
	Metrics *telemetry.Metrics
	// SkipPaths are not recorded; the scrape endpoint would otherwise count itself
	SkipPaths []string
}

// HTTPMetrics records request count and latency per route pattern
func HTTPMetrics(m *telemetry.Metrics) gin.HandlerFunc {
	return HTTPMetricsWithConfig(HTTPMetricsConfig{
		Metrics:   m,
		SkipPaths: []string{"/metrics", "/health"},
	})
}

// HTTPMetricsWithConfig returns the metrics middleware with custom configuration.
// Routes are labelled with gin's matched pattern, never the raw path, so
// label cardinality stays bounded.
func HTTPMetricsWithConfig(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if cfg.Metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		cfg.Metrics.ObserveHTTP(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
