// Package metrics provides Prometheus metrics for authorization decisions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricDecisionsTotal   = "payment_decisions_total"
	MetricDecisionDuration = "payment_decision_duration_seconds"
	MetricLedgerEntries    = "spend_ledger_entries_total"
)

// Metrics contains Prometheus metrics for the authorization pipeline.
// All operations are thread-safe.
type Metrics struct {
	decisionsTotal   *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
	ledgerEntries    prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricDecisionsTotal,
				Help: "Total number of authorization decisions by outcome and reason",
			},
			[]string{"outcome", "reason"},
		),
		decisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricDecisionDuration,
				Help:    "Histogram of end-to-end decision latency in seconds by outcome",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"outcome"},
		),
		ledgerEntries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricLedgerEntries,
				Help: "Total number of spend records appended to the ledger",
			},
		),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.decisionsTotal, m.decisionDuration, m.ledgerEntries} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveDecision records one completed authorization decision.
func (m *Metrics) ObserveDecision(outcome string, reason string, elapsed time.Duration) {
	if reason == "" {
		reason = "none"
	}
	m.decisionsTotal.WithLabelValues(outcome, reason).Inc()
	m.decisionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveLedgerAppend records one new spend ledger entry.
func (m *Metrics) ObserveLedgerAppend() {
	m.ledgerEntries.Inc()
}
