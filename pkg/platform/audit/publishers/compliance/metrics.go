package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "payout/pkg/platform/audit"
)

// Metrics holds Prometheus metrics for the fail-closed publisher.
type Metrics struct {
	EventsEmitted   *prometheus.CounterVec
	PersistFailures prometheus.Counter
}

// NewMetrics registers the publisher metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_audit_events_emitted_total",
			Help: "Total number of audit events appended, by category",
		}, []string{"category"}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payout_audit_persist_failures_total",
			Help: "Total number of audit appends that failed and aborted the operation",
		}),
	}
}

func (m *Metrics) IncEventsEmitted(category audit.EventCategory) {
	m.EventsEmitted.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}
