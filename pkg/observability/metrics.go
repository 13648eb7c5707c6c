package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process metric instruments behind a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	CommandsTotal   *prometheus.CounterVec
	QueriesTotal    *prometheus.CounterVec
	InferenceEdges  prometheus.Histogram
	SnapshotRecords prometheus.Gauge
}

// NewMetrics creates and registers the instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conceptbase",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "conceptbase",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conceptbase",
			Name:      "commands_total",
			Help:      "Commands executed by type and outcome.",
		}, []string{"type", "outcome"}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conceptbase",
			Name:      "queries_total",
			Help:      "Queries executed by type and outcome.",
		}, []string{"type", "outcome"}),
		InferenceEdges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "conceptbase",
			Name:      "inference_results",
			Help:      "Result count per inference query.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "conceptbase",
			Name:      "snapshot_records",
			Help:      "Records written by the last snapshot save.",
		}),
	}
	registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.CommandsTotal,
		m.QueriesTotal,
		m.InferenceEdges,
		m.SnapshotRecords,
	)
	return m
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
