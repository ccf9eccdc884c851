// Package metrics provides Prometheus metrics for the issuance and
// verification pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all credential pipeline metrics.
type Metrics struct {
	// Issuance metrics
	IssuancesTotal      *prometheus.CounterVec // Issued credentials by anchor mode (anchored, simulated)
	IssuanceFailures    *prometheus.CounterVec // Failed issuances by reason
	LedgerWriteFailures prometheus.Counter     // Anchor writes absorbed into the simulated fallback

	// Verification metrics
	VerificationsTotal *prometheus.CounterVec // Verification outcomes (verified, and each rejection reason)

	// Latency metrics
	LedgerWriteDurationSeconds prometheus.Histogram // Anchor write round-trip including confirmation wait
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		IssuancesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "blockverify_issuances_total",
			Help: "Total credentials issued, by anchor mode",
		}, []string{"mode"}),

		IssuanceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "blockverify_issuance_failures_total",
			Help: "Total failed issuance requests, by reason",
		}, []string{"reason"}),

		LedgerWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "blockverify_ledger_write_failures_total",
			Help: "Total ledger anchor writes that fell back to simulated mode",
		}),

		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "blockverify_verifications_total",
			Help: "Total verification requests, by outcome",
		}, []string{"outcome"}),

		LedgerWriteDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "blockverify_ledger_write_duration_seconds",
			Help:    "Duration of ledger anchor writes including confirmation wait",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, // network confirmation dominates
		}),
	}
}

// RecordIssuance records an issued credential in the given anchor mode.
func (m *Metrics) RecordIssuance(simulated bool) {
	mode := "anchored"
	if simulated {
		mode = "simulated"
	}
	m.IssuancesTotal.WithLabelValues(mode).Inc()
}

// RecordIssuanceFailure records a failed issuance by reason code.
func (m *Metrics) RecordIssuanceFailure(reason string) {
	m.IssuanceFailures.WithLabelValues(reason).Inc()
}

// RecordLedgerWriteFailure records an absorbed anchor write failure.
func (m *Metrics) RecordLedgerWriteFailure() {
	m.LedgerWriteFailures.Inc()
}

// RecordVerification records a verification outcome.
func (m *Metrics) RecordVerification(outcome string) {
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLedgerWriteDuration records the duration of an anchor write.
func (m *Metrics) ObserveLedgerWriteDuration(seconds float64) {
	m.LedgerWriteDurationSeconds.Observe(seconds)
}
