// Package metrics holds the Prometheus collectors of both services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpDuration  *prometheus.HistogramVec
	decisions     *prometheus.CounterVec
	hitsRecorded  *prometheus.CounterVec
	viewFallbacks *prometheus.CounterVec
	publishErrors prometheus.Counter
}

// New registers the collectors on reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "eventboard"
	}
	factory := promauto.With(reg)
	return &Metrics{
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admission_decisions_total",
				Help:      "Participation requests moved to a status, by status",
			},
			[]string{"status"},
		),
		hitsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hits_recorded_total",
				Help:      "Endpoint hits recorded, by result",
			},
			[]string{"result"},
		),
		viewFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_lookup_fallbacks_total",
				Help:      "View lookups that fell back to zero, by reason",
			},
			[]string{"reason"},
		),
		publishErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_errors_total",
				Help:      "Request status change messages that could not be published",
			},
		),
	}
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func (m *Metrics) AddDecisions(status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.decisions.WithLabelValues(status).Add(float64(n))
}

// HitRecorded counts a hit; result is "ok" or "error".
func (m *Metrics) HitRecorded(result string) {
	if m == nil {
		return
	}
	m.hitsRecorded.WithLabelValues(result).Inc()
}

func (m *Metrics) ViewFallback(reason string) {
	if m == nil {
		return
	}
	m.viewFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) PublishError() {
	if m == nil {
		return
	}
	m.publishErrors.Inc()
}
