package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the withdrawal engine.
type Metrics struct {
	// Request attempts by outcome
	Requests *prometheus.CounterVec

	// Provider submissions by result: counted, reset, completed, rejected
	Submissions *prometheus.CounterVec

	// Completed quorum payouts
	Completions prometheus.Counter

	// Latency of engine operations, including the unit of work
	OperationLatency *prometheus.HistogramVec
}

// New creates the withdrawal metrics and registers them.
func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_withdrawal_requests_total",
			Help: "Total withdrawal request attempts by outcome",
		}, []string{"outcome"}), // outcome: "created", "must_wait", "denied", "error"

		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_withdrawal_submissions_total",
			Help: "Total rewards data provider submissions by result",
		}, []string{"result"}),

		Completions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payout_withdrawal_completions_total",
			Help: "Total withdrawals that reached quorum and were paid",
		}),

		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payout_withdrawal_operation_duration_seconds",
			Help:    "Duration of withdrawal engine operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementRequest(outcome string) {
	if m != nil {
		m.Requests.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementSubmission(result string) {
	if m != nil {
		m.Submissions.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementCompletions() {
	if m != nil {
		m.Completions.Inc()
	}
}

// ObserveLatency records how long an operation took.
func (m *Metrics) ObserveLatency(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}
