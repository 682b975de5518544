// Package monitoring provides the small metrics surface of the app:
// provider-call counters exposed on /metrics.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Call outcome labels.
const (
	OutcomeSuccess           = "success"
	OutcomeCredentialMissing = "credential_missing"
	OutcomeCredential        = "credential_invalid"
	OutcomeRateLimited       = "rate_limited"
	OutcomeAPIError          = "api_error"
	OutcomeContentMissing    = "content_missing"
	OutcomeParseFailure      = "parse_failure"
	OutcomeTransport         = "transport_error"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	registry         *prometheus.Registry
	providerRequests *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	providerRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nanimeshi",
			Name:      "provider_requests_total",
			Help:      "Chat-completion provider calls by call site and outcome",
		},
		[]string{"call", "outcome"},
	)
	registry.MustRegister(providerRequests)

	return &Metrics{
		registry:         registry,
		providerRequests: providerRequests,
	}
}

// RecordProviderCall counts one provider call.
func (m *Metrics) RecordProviderCall(call, outcome string) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(call, outcome).Inc()
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
