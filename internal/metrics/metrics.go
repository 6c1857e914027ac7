// Package metrics holds the Prometheus collectors for MoodMuse.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayRequests counts backend calls by operation and outcome
	// ("success", "server_error", "network_error", "rejected").
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_gateway_requests_total",
			Help: "Total number of recommendation backend calls",
		},
		[]string{"operation", "outcome"},
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodmuse_gateway_request_duration_seconds",
			Help:    "Duration of recommendation backend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodmuse_circuit_breaker_state",
			Help: "Current circuit breaker state",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// StaleResponses counts results dropped because their epoch or
	// generation no longer matched.
	StaleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_stale_responses_total",
			Help: "Total number of discarded stale backend responses",
		},
		[]string{"component"},
	)

	DevServerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodmuse_devserver_requests_total",
			Help: "Total number of development backend requests",
		},
		[]string{"route", "status"},
	)
)
