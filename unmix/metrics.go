// SPDX-License-Identifier: MIT

package unmix

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus collectors updated by Run and SelectK.
type Metrics struct {
	// FitsTotal counts mixture fits by outcome ("ok" or "error").
	FitsTotal *prometheus.CounterVec
	// FitDuration observes wall time per fit, labelled by K.
	FitDuration *prometheus.HistogramVec
	// EMIterations observes EM iterations per fit.
	EMIterations prometheus.Histogram
	// SelectedK is the K chosen by the last SelectK.
	SelectedK prometheus.Gauge
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		FitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unmix_fits_total",
				Help: "The total number of mixture fits",
			},
			[]string{"outcome"},
		),
		FitDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "unmix_fit_duration_seconds",
				Help:    "The duration of one EM fit in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // From 1ms to ~16s
			},
			[]string{"k"},
		),
		EMIterations: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "unmix_em_iterations",
				Help:    "EM iterations per fit",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
			},
		),
		SelectedK: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "unmix_selected_k",
				Help: "The component count chosen by the last K selection",
			},
		),
	}
}

func (m *Metrics) observeFit(k string, start time.Time, iterations int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.FitsTotal.WithLabelValues("error").Inc()
		return
	}
	m.FitsTotal.WithLabelValues("ok").Inc()
	m.FitDuration.WithLabelValues(k).Observe(time.Since(start).Seconds())
	m.EMIterations.Observe(float64(iterations))
}

func (m *Metrics) observeSelected(k int) {
	if m == nil {
		return
	}
	m.SelectedK.Set(float64(k))
}
