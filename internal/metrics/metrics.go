// Package metrics exposes Prometheus instruments for the ledger.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	movementsAppended  *prometheus.CounterVec
	operationsRejected *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
}

// New registers the ledger instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		movementsAppended: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_movements_appended_total",
				Help: "Total number of movements appended to the ledger",
			},
			[]string{"type"},
		),
		operationsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_rejected_total",
				Help: "Total number of ledger operations rejected by validation",
			},
			[]string{"operation", "reason"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.movementsAppended, m.operationsRejected, m.operationDuration)
	return m
}

// The methods below are no-ops on a nil *Metrics.

func (m *Metrics) MovementAppended(kind string) {
	if m == nil {
		return
	}
	m.movementsAppended.WithLabelValues(kind).Inc()
}

func (m *Metrics) OperationRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.operationsRejected.WithLabelValues(operation, reason).Inc()
}

// Time returns a func that records the elapsed time of operation when called.
func (m *Metrics) Time(operation string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
