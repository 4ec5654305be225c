// Package metrics exposes Prometheus collectors for structure operations
// and the pacer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rendis/dsviz/internal/pacing"
)

// Outcome labels of an operation.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	traceLen   *prometheus.HistogramVec
	published  *prometheus.CounterVec
	cancelled  *prometheus.CounterVec
}

// New registers every collector. pool may be nil; when set, its counters are
// exported as gauges read at scrape time.
func New(pool func() pacing.PoolMetrics) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dsviz_operations_total",
			Help: "Structure and algorithm operations by outcome.",
		}, []string{"structure", "operation", "outcome"}),
		traceLen: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dsviz_trace_length",
			Help:    "Number of steps recorded per operation.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
		}, []string{"structure"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dsviz_steps_published_total",
			Help: "Frames published to the hub per channel.",
		}, []string{"channel"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dsviz_animations_cancelled_total",
			Help: "Animations superseded or cancelled per channel.",
		}, []string{"channel"}),
	}

	m.registry.MustRegister(m.operations, m.traceLen, m.published, m.cancelled)

	if pool != nil {
		gauge := func(name, help string, read func(pacing.PoolMetrics) int64) prometheus.Collector {
			return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
				return float64(read(pool()))
			})
		}
		m.registry.MustRegister(
			gauge("dsviz_pool_active", "Animations currently playing.",
				func(p pacing.PoolMetrics) int64 { return p.Active }),
			gauge("dsviz_pool_waiting", "Animations waiting for a free worker.",
				func(p pacing.PoolMetrics) int64 { return p.Waiting }),
			gauge("dsviz_pool_completed", "Animations played to the end.",
				func(p pacing.PoolMetrics) int64 { return p.Completed }),
			gauge("dsviz_pool_cancelled", "Animations stopped early.",
				func(p pacing.PoolMetrics) int64 { return p.Cancelled }),
			gauge("dsviz_pool_failed", "Animations that failed to publish.",
				func(p pacing.PoolMetrics) int64 { return p.Failed }),
		)
	}
	return m
}

// ObserveOperation records one operation and the length of its trace.
func (m *Metrics) ObserveOperation(structure, operation, outcome string, steps int) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(structure, operation, outcome).Inc()
	m.traceLen.WithLabelValues(structure).Observe(float64(steps))
}

// FramePublished implements pacing.Observer.
func (m *Metrics) FramePublished(channel string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(channel).Inc()
}

// AnimationCancelled implements pacing.Observer.
func (m *Metrics) AnimationCancelled(channel string) {
	if m == nil {
		return
	}
	m.cancelled.WithLabelValues(channel).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ pacing.Observer = (*Metrics)(nil)
