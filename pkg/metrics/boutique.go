package metrics

import "github.com/prometheus/client_golang/prometheus"

// BoutiqueMetrics counts allocation decisions.
type BoutiqueMetrics struct {
	decisions *prometheus.CounterVec
}

func NewBoutiqueMetrics(reg prometheus.Registerer) *BoutiqueMetrics {
	if reg == nil {
		return &BoutiqueMetrics{}
	}
	m := &BoutiqueMetrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boutique_decisions_total",
			Help:      "Boutique order decisions by outcome and result.",
		}, []string{"outcome", "result"}),
	}
	reg.MustRegister(m.decisions)
	return m
}

// ObserveDecision records result ("ok", "conflict", "error") for outcome.
func (m *BoutiqueMetrics) ObserveDecision(outcome, result string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(labelOrUnknown(outcome), result).Inc()
}
