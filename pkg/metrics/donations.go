package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Callback results recorded by DonationMetrics.
const (
	CallbackApplied   = "applied"
	CallbackDuplicate = "duplicate"
	CallbackNotFound  = "not_found"
	CallbackRejected  = "rejected"
)

// DonationMetrics tracks payment callbacks and campaign total reconciliation.
type DonationMetrics struct {
	callbacks      *prometheus.CounterVec
	completedCents prometheus.Counter
	drift          prometheus.Gauge
	corrections    prometheus.Counter
}

func NewDonationMetrics(reg prometheus.Registerer) *DonationMetrics {
	if reg == nil {
		return &DonationMetrics{}
	}
	m := &DonationMetrics{
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_callbacks_total",
			Help:      "Payment callbacks by operator, outcome and result.",
		}, []string{"operator", "outcome", "result"}),
		completedCents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_completed_cents_total",
			Help:      "Sum of completed donation amounts in cents.",
		}),
		drift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "campaign_total_drift_campaigns",
			Help:      "Campaigns whose stored total disagreed with completed donations on the last reconciliation.",
		}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaign_total_corrections_total",
			Help:      "Campaign totals rewritten by reconciliation.",
		}),
	}
	reg.MustRegister(m.callbacks, m.completedCents, m.drift, m.corrections)
	return m
}

func (m *DonationMetrics) ObserveCallback(operator, outcome, result string) {
	if m == nil || m.callbacks == nil {
		return
	}
	m.callbacks.WithLabelValues(labelOrUnknown(operator), labelOrUnknown(outcome), result).Inc()
}

func (m *DonationMetrics) AddCompleted(cents int64) {
	if m == nil || m.completedCents == nil || cents <= 0 {
		return
	}
	m.completedCents.Add(float64(cents))
}

func (m *DonationMetrics) ObserveReconciliation(drifted, corrected int) {
	if m == nil || m.drift == nil {
		return
	}
	m.drift.Set(float64(drifted))
	m.corrections.Add(float64(corrected))
}
