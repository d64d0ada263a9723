// Package metrics exposes Prometheus metrics for assessments and persistence.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "speecheval"

// Outcome labels for assessments and saves.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics owns its own registry so tests and multiple servers do not collide.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	assessmentDuration *prometheus.HistogramVec
	assessmentsTotal   *prometheus.CounterVec
	savesTotal         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		assessmentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assessment_duration_seconds",
				Help:      "Duration of vendor assessment calls in seconds",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"vendor"},
		),
		assessmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_total",
				Help:      "Total number of assessments by vendor and outcome",
			},
			[]string{"vendor", "outcome"}, // outcome: success or an error kind
		),
		savesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_saves_total",
				Help:      "Total number of evaluation saves by outcome",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(m.assessmentDuration, m.assessmentsTotal, m.savesTotal)
	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// ObserveAssessment records one adapter call.
func (m *Metrics) ObserveAssessment(vendor, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.assessmentDuration.WithLabelValues(vendor).Observe(d.Seconds())
	m.assessmentsTotal.WithLabelValues(vendor, outcome).Inc()
}

// ObserveSave records one persistence attempt.
func (m *Metrics) ObserveSave(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.savesTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
