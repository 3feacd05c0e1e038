// Package metrics exposes Prometheus instrumentation for tool handlers.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and collectors for the HTTP surface.
type Metrics struct {
	registry *prometheus.Registry

	ToolInvocationsTotal *prometheus.CounterVec
	ToolDurationSeconds  *prometheus.HistogramVec
}

// New builds a self-contained metrics set backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ToolInvocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conut",
			Subsystem: "tools",
			Name:      "invocations_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "status"}),
		ToolDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "conut",
			Subsystem: "tools",
			Name:      "duration_seconds",
			Help:      "Tool handler latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
}

// ObserveTool records one invocation and its duration.
func (m *Metrics) ObserveTool(tool, status string, elapsed time.Duration) {
	m.ToolInvocationsTotal.WithLabelValues(tool, status).Inc()
	m.ToolDurationSeconds.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
