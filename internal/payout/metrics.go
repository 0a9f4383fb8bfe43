package payout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks payout dispatch.
type Metrics struct {
	Dispatched   *prometheus.CounterVec
	Failures     prometheus.Counter
	BreakerState prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		Dispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_transfers_dispatched_total",
			Help: "Total payout transfers handed to the transferer, by kind",
		}, []string{"kind"}),
		Failures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payout_transfer_failures_total",
			Help: "Total failed payout transfer attempts",
		}),
		BreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "payout_transfer_circuit_open",
			Help: "1 while the transfer circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncDispatched(kind string) {
	if m != nil {
		m.Dispatched.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncFailures() {
	if m != nil {
		m.Failures.Inc()
	}
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
		return
	}
	m.BreakerState.Set(0)
}
