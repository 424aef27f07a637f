// Package telemetry counts units of batch work (backtests, stress
// scenarios, Monte Carlo paths) with Prometheus collectors.
package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Units    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantlab_units_total",
				Help: "Units of work completed by kind and status",
			},
			[]string{"kind", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantlab_unit_duration_seconds",
				Help:    "Duration of a single unit of work in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Units, m.Duration)
	}
	return m
}

// Observe records one finished unit of the given kind.
func (m *Metrics) Observe(kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Units.WithLabelValues(kind, status).Inc()
	m.Duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Dump writes everything g gathers in the Prometheus text exposition format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
