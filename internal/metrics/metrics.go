// Package metrics holds the Prometheus collectors for plan generation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flexplan"

// Metrics groups every collector the service updates.
// A nil *Metrics is valid and records nothing, which keeps tests free of registries.
type Metrics struct {
	GenerationRequests *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	PlanOperations     *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GenerationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Calls to the generative service by persona and outcome.",
		}, []string{"persona", "outcome"}),
		GenerationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of calls to the generative service.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"persona"}),
		PlanOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_operations_total",
			Help:      "Create, import and revise operations by outcome.",
		}, []string{"operation", "outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
	}
	reg.MustRegister(m.GenerationRequests, m.GenerationDuration, m.PlanOperations, m.ActiveSessions)
	return m
}

// ObserveGeneration records one call to the generative service.
func (m *Metrics) ObserveGeneration(persona, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.GenerationRequests.WithLabelValues(persona, outcome).Inc()
	m.GenerationDuration.WithLabelValues(persona).Observe(seconds)
}

// ObservePlanOperation records the outcome of a create, import or revise.
func (m *Metrics) ObservePlanOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.PlanOperations.WithLabelValues(operation, outcome).Inc()
}

// SetActiveSessions publishes the current session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
