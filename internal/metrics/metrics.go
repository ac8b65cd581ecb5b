package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Question metrics
	QuestionsTotal      *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive      prometheus.Gauge
	HistoryTrimmedTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		QuestionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "askd_questions_total",
				Help: "Total number of /ask requests by outcome",
			},
			[]string{"status"},
		),
		ProviderCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "askd_provider_call_duration_seconds",
				Help:    "Duration of completion provider calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "askd_sessions_active",
				Help: "Number of sessions currently held in memory",
			},
		),
		HistoryTrimmedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "askd_history_trimmed_total",
				Help: "Total number of turns discarded by the retention cap",
			},
		),
	}

	registry.MustRegister(
		m.QuestionsTotal,
		m.ProviderCallDuration,
		m.SessionsActive,
		m.HistoryTrimmedTotal,
	)

	return m
}

// RecordQuestion increments the question counter for an outcome:
// success, validation_error, or provider_error.
func (m *Metrics) RecordQuestion(status string) {
	m.QuestionsTotal.WithLabelValues(status).Inc()
}

// ObserveProviderCall records the duration of a provider round trip.
func (m *Metrics) ObserveProviderCall(provider string, d time.Duration) {
	m.ProviderCallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// SetActiveSessions updates the active sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.SessionsActive.Set(float64(n))
}

// AddTrimmed adds discarded turns to the trim counter.
func (m *Metrics) AddTrimmed(n int) {
	if n > 0 {
		m.HistoryTrimmedTotal.Add(float64(n))
	}
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
