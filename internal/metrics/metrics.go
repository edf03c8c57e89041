package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the admission counters exported to Prometheus.
type Metrics struct {
	Decisions   *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec
	registry    *prometheus.Registry
}

// New creates and registers the admission metrics on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_admission_decisions_total",
				Help: "Admission decisions by route, policy and verdict",
			},
			[]string{"route", "policy", "verdict"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_store_errors_total",
				Help: "Admission checks that failed because the counter store errored",
			},
			[]string{"route", "policy"},
		),
		registry: reg,
	}

	reg.MustRegister(m.Decisions, m.StoreErrors)

	return m
}

// Decision records one admission outcome.
func (m *Metrics) Decision(route, policy, verdict string) {
	m.Decisions.WithLabelValues(route, policy, verdict).Inc()
}

// StoreError records one failed admission check.
func (m *Metrics) StoreError(route, policy string) {
	m.StoreErrors.WithLabelValues(route, policy).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
