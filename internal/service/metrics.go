package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"reimburse/internal/model"
)

// Metrics holds domain counters. A nil *Metrics records nothing.
type Metrics struct {
	transitions *prometheus.CounterVec
}

// NewMetrics creates the domain counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoice_transitions_total",
				Help: "Lifecycle transitions applied to invoices, by target status.",
			},
			[]string{"to"},
		),
	}
	if err := reg.Register(m.transitions); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) transition(to model.Status) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}
