package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts lifecycle transitions and cascade deactivations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Transitions      *prometheus.CounterVec
	CascadeContracts *prometheus.CounterVec
}

// New registers the lifecycle metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cardhub_lifecycle_transitions_total",
			Help: "Lifecycle transitions applied, by entity kind and transition",
		}, []string{"kind", "transition"}),
		CascadeContracts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cardhub_cascade_contracts_total",
			Help: "Contracts deactivated by cascade, by the kind that caused it",
		}, []string{"cause"}),
	}
}

func (m *Metrics) IncTransition(kind, transition string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(kind, transition).Inc()
}

func (m *Metrics) AddCascade(cause string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.CascadeContracts.WithLabelValues(cause).Add(float64(n))
}
