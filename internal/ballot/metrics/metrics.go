package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for ballot casting.
type Metrics struct {
	CastOutcomes *prometheus.CounterVec
	CastLatency  prometheus.Histogram
}

// New creates a Metrics instance with all ballot metrics registered.
func New() *Metrics {
	return &Metrics{
		CastOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_ballot_cast_outcomes_total",
			Help: "Total vote casting attempts by outcome",
		}, []string{"outcome"}), // outcome: "ok" or the refusing error code

		CastLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "votegate_ballot_cast_duration_seconds",
			Help:    "Duration of full vote casting including eligibility checks",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// IncrementOutcome records a casting outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.CastOutcomes.WithLabelValues(outcome).Inc()
	}
}

// ObserveCastLatency records the total casting duration.
func (m *Metrics) ObserveCastLatency(d time.Duration) {
	if m != nil {
		m.CastLatency.Observe(d.Seconds())
	}
}
