package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchup_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ChallengeTransitions counts negotiation actions and their outcome
	// (applied|illegal|invalid|conflict|error).
	ChallengeTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchup_challenge_transitions_total",
			Help: "Total number of challenge negotiation actions",
		},
		[]string{"action", "result"},
	)

	// PermissionChecks counts team permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchup_permission_checks_total",
			Help: "Total number of team permission checks",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchup_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
