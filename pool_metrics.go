package surrealengine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// poolMetrics holds the Prometheus collectors for a connection pool.
type poolMetrics struct {
	acquires     *prometheus.CounterVec
	waitDuration prometheus.Histogram
	inUse        prometheus.Gauge
	idle         prometheus.Gauge
	dials        *prometheus.CounterVec
}

// newPoolMetrics registers the pool's collectors with reg. A nil reg
// creates unregistered collectors, which keeps tests from colliding on the
// default registry.
func newPoolMetrics(reg prometheus.Registerer) *poolMetrics {
	factory := promauto.With(reg)

	return &poolMetrics{
		acquires: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surrealengine_pool_acquires_total",
				Help: "Total number of pool acquire attempts",
			},
			[]string{"result"},
		),

		waitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "surrealengine_pool_wait_duration_seconds",
				Help:    "Time spent waiting for a pooled connection",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs to ~1.6s
			},
		),

		inUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "surrealengine_pool_connections_in_use",
				Help: "Current number of pooled connections checked out",
			},
		),

		idle: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "surrealengine_pool_connections_idle",
				Help: "Current number of idle pooled connections",
			},
		),

		dials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surrealengine_pool_dials_total",
				Help: "Total number of connections dialed by the pool",
			},
			[]string{"result"},
		),
	}
}

func (m *poolMetrics) recordAcquire(result string, waitSeconds float64) {
	m.acquires.WithLabelValues(result).Inc()
	if result == "ok" {
		m.waitDuration.Observe(waitSeconds)
	}
}

func (m *poolMetrics) recordDial(err error) {
	if err != nil {
		m.dials.WithLabelValues("error").Inc()
		return
	}
	m.dials.WithLabelValues("ok").Inc()
}

func (m *poolMetrics) setGauges(inUse, idle int) {
	m.inUse.Set(float64(inUse))
	m.idle.Set(float64(idle))
}
