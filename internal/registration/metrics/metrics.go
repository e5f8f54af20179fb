package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration pipeline.
type Metrics struct {
	Registered       prometheus.Counter
	Rejections       *prometheus.CounterVec
	DuplicatesByKind *prometheus.CounterVec
}

// New creates a Metrics instance with all registration metrics registered.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votegate_registrations_total",
			Help: "Total voters admitted by the registration pipeline",
		}),

		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_registration_rejections_total",
			Help: "Total registrations refused, by refusing gate's error code",
		}, []string{"code"}),

		DuplicatesByKind: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votegate_registration_duplicates_total",
			Help: "Total duplicate-voter rejections by collision kind",
		}, []string{"kind"}),
	}
}

// IncrementRegistered records an admitted voter.
func (m *Metrics) IncrementRegistered() {
	if m != nil {
		m.Registered.Inc()
	}
}

// IncrementRejection records a refused registration.
func (m *Metrics) IncrementRejection(code string) {
	if m != nil {
		m.Rejections.WithLabelValues(code).Inc()
	}
}

// IncrementDuplicate records a duplicate-voter rejection.
func (m *Metrics) IncrementDuplicate(kind string) {
	if m != nil {
		m.DuplicatesByKind.WithLabelValues(kind).Inc()
	}
}
