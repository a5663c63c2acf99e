package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive    prometheus.Gauge
	SessionsLaunched  prometheus.Counter
	LaunchFailures    prometheus.Counter
	DiscoveryRuns     prometheus.Counter
	DiscoverySkipped  prometheus.Counter
	SessionsReclaimed prometheus.Counter

	// Bridge metrics
	BridgesActive prometheus.Gauge
	BridgesTotal  *prometheus.CounterVec
	BridgedBytes  *prometheus.CounterVec
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_viewer_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_viewer_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agent_viewer_sessions_active",
				Help: "Number of sessions currently tracked in the registry",
			},
		),
		SessionsLaunched: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agent_viewer_sessions_launched_total",
				Help: "Total number of successfully launched sessions",
			},
		),
		LaunchFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agent_viewer_launch_failures_total",
				Help: "Total number of failed launch attempts",
			},
		),
		DiscoveryRuns: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agent_viewer_discovery_runs_total",
				Help: "Total number of discovery passes",
			},
		),
		DiscoverySkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agent_viewer_discovery_skipped_total",
				Help: "Containers skipped during discovery (stopped or no port in logs)",
			},
		),
		SessionsReclaimed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agent_viewer_sessions_reclaimed_total",
				Help: "Registry entries removed by cleanup passes",
			},
		),

		BridgesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agent_viewer_bridges_active",
				Help: "Number of websocket bridges currently relaying",
			},
		),
		BridgesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_viewer_bridges_total",
				Help: "Total bridge attempts by outcome",
			},
			[]string{"outcome"},
		),
		BridgedBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_viewer_bridged_bytes_total",
				Help: "Bytes relayed through bridges by direction",
			},
			[]string{"direction"},
		),
	}
}

// Handler returns the Prometheus exposition handler for this collector.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records metrics for a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordBridge records a bridge attempt outcome ("relayed", "not_found",
// "unreachable").
func (m *Metrics) RecordBridge(outcome string) {
	m.BridgesTotal.WithLabelValues(outcome).Inc()
}
