// Package metrics holds the Prometheus collectors for hook invocations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hook outcomes.
const (
	OutcomeAccepted   = "accepted"
	OutcomeRejected   = "rejected"
	OutcomeSuppressed = "suppressed"
)

// Welcome email results.
const (
	WelcomeSent      = "sent"
	WelcomeFailed    = "failed"
	WelcomeDuplicate = "duplicate"
	WelcomeSkipped   = "skipped"
)

// Metrics provides observability for the lifecycle hooks.
type Metrics struct {
	HookInvocations *prometheus.CounterVec
	HookDuration    *prometheus.HistogramVec
	WelcomeEmails   *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HookInvocations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_hooks_invocations_total",
			Help: "Total hook invocations by hook and outcome",
		}, []string{"hook", "outcome", "kind"}),
		HookDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "identity_hooks_duration_seconds",
			Help:    "Duration of hook invocations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"hook"}),
		WelcomeEmails: f.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_hooks_welcome_emails_total",
			Help: "Welcome email attempts by result",
		}, []string{"result"}),
	}
}

// ObserveHook records one invocation. Call with time.Now() taken at the start.
func (m *Metrics) ObserveHook(hook, outcome, kind string, start time.Time) {
	m.HookInvocations.WithLabelValues(hook, outcome, kind).Inc()
	m.HookDuration.WithLabelValues(hook).Observe(time.Since(start).Seconds())
}

// IncrementWelcome records a welcome email result.
func (m *Metrics) IncrementWelcome(result string) {
	m.WelcomeEmails.WithLabelValues(result).Inc()
}
