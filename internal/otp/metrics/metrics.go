package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the OTP ledger.
type Metrics struct {
	CodesIssued    prometheus.Counter
	VerifyOutcomes *prometheus.CounterVec
}

// New creates a Metrics instance with all OTP metrics registered.
func New() *Metrics {
	return &Metrics{
		CodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_otp_codes_issued_total",
			Help: "Total OTP codes issued",
		}),
		VerifyOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_otp_verify_outcomes_total",
			Help: "Total OTP verification attempts by outcome",
		}, []string{"outcome"}), // outcome: "ok", "not_found", "expired", "mismatch", "too_many_attempts"
	}
}

// IncrementIssued records an issued code.
func (m *Metrics) IncrementIssued() {
	if m != nil {
		m.CodesIssued.Inc()
	}
}

// IncrementVerify records a verification outcome.
func (m *Metrics) IncrementVerify(outcome string) {
	if m != nil {
		m.VerifyOutcomes.WithLabelValues(outcome).Inc()
	}
}
