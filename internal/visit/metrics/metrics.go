package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the visit scheduler.
type Metrics struct {
	// Evidence gathering latencies by source
	EvidenceLatency *prometheus.HistogramVec

	// Decision outcomes by decision and rejection reason
	DecisionOutcome *prometheus.CounterVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram

	// Gate pass verification outcomes
	PassVerification *prometheus.CounterVec
}

// New creates a new Metrics instance with all visit scheduler metrics registered.
func New() *Metrics {
	return &Metrics{
		EvidenceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sigvip_visit_evidence_duration_seconds",
			Help:    "Duration of evidence gathering operations by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "establishment", "inmate", "visitor", "authorization", "restrictions", "ledger"

		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigvip_visit_decisions_total",
			Help: "Total visit decisions by outcome and rejection reason",
		}, []string{"decision", "reason"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sigvip_visit_evaluate_duration_seconds",
			Help:    "Duration of full visit evaluation including evidence gathering and the ledger append",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		PassVerification: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sigvip_visit_pass_verifications_total",
			Help: "Total gate pass verifications by result",
		}, []string{"result"}), // result: "valid", "invalid"
	}
}

// ObserveEvidenceLatency records the duration of fetching evidence from a source.
func (m *Metrics) ObserveEvidenceLatency(source string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a visit decision. For admissions the reason is empty.
func (m *Metrics) IncrementOutcome(decision, reason string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(decision, reason).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementPassVerification records a gate pass check result.
func (m *Metrics) IncrementPassVerification(result string) {
	if m != nil {
		m.PassVerification.WithLabelValues(result).Inc()
	}
}
