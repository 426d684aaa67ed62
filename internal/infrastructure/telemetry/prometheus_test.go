package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics("alfred")

	m.ObserveHTTP("/api/v1/conversations", "GET", 200, 12*time.Millisecond)
	m.ObserveHTTP("", "GET", 404, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/conversations", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("unmatched", "GET", "404")))

	m.ObserveLLM("anthropic", "chat", nil, 120, 340)
	m.ObserveLLM("anthropic", "autofix", errors.New("boom"), 0, 0)
	assert.Equal(t, 340.0, testutil.ToFloat64(m.llmTokens.WithLabelValues("anthropic", "output")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.llmRequests.WithLabelValues("anthropic", "autofix", "error")))

	m.ObserveDeployment("ready", 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deployments.WithLabelValues("ready")))

	done := m.StreamStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSSEStreams))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeSSEStreams))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("/", "GET", 200, time.Millisecond)
		m.ObserveQuotaRejection("projects")
		m.StreamStarted()()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("alfred")
	m.ObserveDomainPurchase("completed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `alfred_domain_purchases_total{status="completed"} 1`))
}
