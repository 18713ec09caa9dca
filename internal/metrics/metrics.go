package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the orchestration core
type Metrics struct {
	registry *prometheus.Registry

	// Run metrics
	RunsTotal            *prometheus.CounterVec
	RunDuration          *prometheus.HistogramVec
	RunIterations        prometheus.Histogram
	CompletionCallsTotal *prometheus.CounterVec

	// Tool metrics
	ToolExecutionsTotal      *prometheus.CounterVec
	ToolExecutionDuration    *prometheus.HistogramVec
	ToolExecutionErrorsTotal *prometheus.CounterVec

	// Token metrics
	TokensTotal *prometheus.CounterVec
}

// New creates and registers all metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_runs_total",
				Help: "Total number of agent runs by outcome",
			},
			[]string{"provider", "outcome"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_run_duration_seconds",
				Help:    "Duration of agent runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		RunIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agent_run_iterations",
				Help:    "Tool-use iterations per agent run",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),
		CompletionCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_calls_total",
				Help: "Total number of completion client calls",
			},
			[]string{"provider", "status"},
		),

		ToolExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool_name", "status"},
		),
		ToolExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool_name"},
		),
		ToolExecutionErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_execution_errors_total",
				Help: "Total number of tool execution errors",
			},
			[]string{"tool_name", "error_type"},
		),

		TokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_tokens_total",
				Help: "Total tokens consumed by completion calls",
			},
			[]string{"provider", "kind"},
		),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RunIterations,
		m.CompletionCallsTotal,
		m.ToolExecutionsTotal,
		m.ToolExecutionDuration,
		m.ToolExecutionErrorsTotal,
		m.TokensTotal,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRun records the outcome of one agent run. Safe on a nil receiver so
// callers can leave metrics unconfigured.
func (m *Metrics) RecordRun(provider, outcome string, duration time.Duration, iterations int) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(provider, outcome).Inc()
	m.RunDuration.WithLabelValues(provider).Observe(duration.Seconds())
	m.RunIterations.Observe(float64(iterations))
}

// RecordCompletionCall records one completion client round trip
func (m *Metrics) RecordCompletionCall(provider string, success bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	m.CompletionCallsTotal.WithLabelValues(provider, status).Inc()
}

// RecordToolExecution records one tool execution
func (m *Metrics) RecordToolExecution(toolName string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	m.ToolExecutionsTotal.WithLabelValues(toolName, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(duration.Seconds())
}

// RecordToolError records a categorized tool failure
func (m *Metrics) RecordToolError(toolName, errorType string) {
	if m == nil {
		return
	}
	m.ToolExecutionErrorsTotal.WithLabelValues(toolName, errorType).Inc()
}

// RecordTokens records token usage for a provider
func (m *Metrics) RecordTokens(provider string, prompt, completion, cacheRead, cacheWrite int) {
	if m == nil {
		return
	}
	m.TokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	m.TokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
	if cacheRead > 0 {
		m.TokensTotal.WithLabelValues(provider, "cache_read").Add(float64(cacheRead))
	}
	if cacheWrite > 0 {
		m.TokensTotal.WithLabelValues(provider, "cache_write").Add(float64(cacheWrite))
	}
}
