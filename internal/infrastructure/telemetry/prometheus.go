package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors served at /metrics
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	llmRequests      *prometheus.CounterVec
	llmTokens        *prometheus.CounterVec
	deployments      *prometheus.CounterVec
	deployAttempts   prometheus.Histogram
	domainPurchases  *prometheus.CounterVec
	renderJobs       *prometheus.CounterVec
	quotaRejections  *prometheus.CounterVec
	activeSSEStreams prometheus.Gauge
}

// NewMetrics registers every collector on a private registry
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60},
		}, []string{"route", "method"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "llm_requests_total",
			Help: "LLM completions by provider, purpose and outcome.",
		}, []string{"provider", "purpose", "outcome"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "llm_tokens_total",
			Help: "LLM tokens by provider and direction.",
		}, []string{"provider", "direction"}),
		deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "deployments_total",
			Help: "Finished deployments by final status.",
		}, []string{"status"}),
		deployAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "deployment_attempts",
			Help:    "Attempts used by finished deployments.",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		domainPurchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "domain_purchases_total",
			Help: "Domain purchases by final status.",
		}, []string{"status"}),
		renderJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "persona_render_jobs_total",
			Help: "Persona studio jobs by type and status.",
		}, []string{"job_type", "status"}),
		quotaRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "quota_rejections_total",
			Help: "Requests rejected by plan limits.",
		}, []string{"limit"}),
		activeSSEStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sse_streams_active",
			Help: "Chat replies currently streaming.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.llmRequests, m.llmTokens,
		m.deployments, m.deployAttempts, m.domainPurchases, m.renderJobs,
		m.quotaRejections, m.activeSSEStreams,
	)
	return m
}

// Handler serves the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one request
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveLLM records one completion and its token usage
func (m *Metrics) ObserveLLM(provider, purpose string, err error, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.llmRequests.WithLabelValues(provider, purpose, outcome).Inc()
	m.llmTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	m.llmTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
}

// ObserveDeployment records a finished deployment
func (m *Metrics) ObserveDeployment(status string, attempts int) {
	if m == nil {
		return
	}
	m.deployments.WithLabelValues(status).Inc()
	m.deployAttempts.Observe(float64(attempts))
}

// ObserveDomainPurchase records a finished domain purchase
func (m *Metrics) ObserveDomainPurchase(status string) {
	if m == nil {
		return
	}
	m.domainPurchases.WithLabelValues(status).Inc()
}

// ObserveRenderJob records a studio job transition
func (m *Metrics) ObserveRenderJob(jobType, status string) {
	if m == nil {
		return
	}
	m.renderJobs.WithLabelValues(jobType, status).Inc()
}

// ObserveQuotaRejection records a plan limit hit
func (m *Metrics) ObserveQuotaRejection(limit string) {
	if m == nil {
		return
	}
	m.quotaRejections.WithLabelValues(limit).Inc()
}

// StreamStarted increments the active stream gauge and returns its decrement
func (m *Metrics) StreamStarted() func() {
	if m == nil {
		return func() {}
	}
	m.activeSSEStreams.Inc()
	return m.activeSSEStreams.Dec
}
