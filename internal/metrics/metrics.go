// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	deadlineTasks   *prometheus.GaugeVec
}

// New registers the collectors on reg. Passing a fresh registry keeps tests
// isolated from the default one.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasktracker_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tasktracker_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		deadlineTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tasktracker_open_tasks_by_deadline",
				Help: "Open tasks per deadline bucket at the last worker pass",
			},
			[]string{"bucket"},
		),
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetDeadlineCounts overwrites the gauge for every bucket in counts.
func (m *Metrics) SetDeadlineCounts(counts map[string]int) {
	for bucket, n := range counts {
		m.deadlineTasks.WithLabelValues(bucket).Set(float64(n))
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
