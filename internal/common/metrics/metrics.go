// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_decisions_total",
			Help: "Total number of routing decisions by primary channel",
		},
		[]string{"primary"},
	)

	RoutingNeedsReview = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routing_needs_review_total",
			Help: "Total number of decisions flagged for human review",
		},
	)

	RoutingDisqualifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_disqualifications_total",
			Help: "Total number of channel disqualifications by channel",
		},
		[]string{"channel"},
	)

	RoutingQuotaRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_quota_rejections_total",
			Help: "Total number of quota-based channel disqualifications by key",
		},
		[]string{"key"},
	)

	RoutingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_failures_total",
			Help: "Total number of failed routing requests by error code",
		},
		[]string{"error_code"},
	)

	RoutingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "routing_decision_duration_seconds",
			Help: "Duration of routing decisions in seconds",
		},
	)
)
