// Package observability exposes Prometheus metrics for the daemon.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's instrumentation. Counters track traffic and
// errors, histograms track latency, and the in-flight gauge tracks saturation.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec

	JobsSubmitted  prometheus.Counter
	JobsCompleted  prometheus.Counter
	JobsFailed     *prometheus.CounterVec
	JobsProcessing prometheus.Gauge
	StageDuration  *prometheus.HistogramVec
}

// NewMetrics creates and registers all daemon metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "redraft",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "redraft",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "redraft",
			Name:      "jobs_submitted_total",
			Help:      "Total jobs accepted for processing.",
		}),
		JobsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "redraft",
			Name:      "jobs_completed_total",
			Help:      "Total jobs that produced a downloadable artifact.",
		}),
		JobsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "redraft",
			Name:      "jobs_failed_total",
			Help:      "Total failed jobs by failure code.",
		}, []string{"code"}),
		JobsProcessing: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "redraft",
			Name:      "jobs_processing",
			Help:      "Jobs currently held by a worker.",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "redraft",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution duration in seconds.",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one handled HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// JobStarted marks a job claimed by a worker.
func (m *Metrics) JobStarted() {
	m.JobsProcessing.Inc()
}

// JobFinished marks a worker releasing a job, recording the terminal outcome
// when the stage was the last one.
func (m *Metrics) JobFinished(stage string, durationSeconds float64) {
	m.JobsProcessing.Dec()
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// JobFailed records a terminal failure under its machine-readable code.
func (m *Metrics) JobFailed(code string) {
	if code == "" {
		code = "unknown"
	}
	m.JobsFailed.WithLabelValues(code).Inc()
}
