// Package prometheus wraps metric registration behind small interfaces so
// application code never touches the client library directly and tests can
// substitute a recording collector.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CounterVec increments labeled counters.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Counter is one labeled counter series.
type Counter interface {
	Inc()
	Add(v float64)
}

// HistogramVec observes labeled distributions.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// Histogram is one labeled histogram series.
type Histogram interface {
	Observe(v float64)
}

// GaugeVec sets labeled gauges.
type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

// Gauge is one labeled gauge series.
type Gauge interface {
	Set(v float64)
	Inc()
	Dec()
}

// MetricsCollector registers metric families.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
}

// ─────────────────────────────────────────────────────────────────────────────
// client_golang-backed collector
// ─────────────────────────────────────────────────────────────────────────────

type promCollector struct {
	registry *prometheus.Registry
}

// NewCollector builds a collector over a fresh registry.
func NewCollector() (MetricsCollector, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	return &promCollector{registry: reg}, reg
}

// Handler exposes reg over HTTP for the /metrics endpoint.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

type promCounterVec struct{ v *prometheus.CounterVec }

func (c promCounterVec) WithLabelValues(lvs ...string) Counter {
	return c.v.WithLabelValues(lvs...)
}

type promHistogramVec struct{ v *prometheus.HistogramVec }

func (h promHistogramVec) WithLabelValues(lvs ...string) Histogram {
	return h.v.WithLabelValues(lvs...)
}

type promGaugeVec struct{ v *prometheus.GaugeVec }

func (g promGaugeVec) WithLabelValues(lvs ...string) Gauge {
	return g.v.WithLabelValues(lvs...)
}

func (p *promCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	v := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	p.registry.MustRegister(v)
	return promCounterVec{v: v}
}

func (p *promCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	v := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	p.registry.MustRegister(v)
	return promHistogramVec{v: v}
}

func (p *promCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	v := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	p.registry.MustRegister(v)
	return promGaugeVec{v: v}
}

//Personal.AI order the ending
