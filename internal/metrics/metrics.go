// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IntentsTotal counts handled intents by intent and platform.
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overtalkerr_intents_total",
		Help: "Voice intents handled, by intent and platform.",
	}, []string{"intent", "platform"})

	// BackendRequestsTotal counts calls to the media backend by
	// operation and outcome.
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overtalkerr_backend_requests_total",
		Help: "Media backend calls, by backend, operation, and outcome.",
	}, []string{"backend", "operation", "outcome"})

	// SessionsReaped counts expired sessions removed by the reaper.
	SessionsReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overtalkerr_sessions_reaped_total",
		Help: "Expired conversation sessions removed.",
	})
)

// ObserveBackend records one backend call outcome.
func ObserveBackend(backend, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	BackendRequestsTotal.WithLabelValues(backend, operation, outcome).Inc()
}
