package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hiring_application_transitions_total",
			Help: "Total number of successful application status transitions",
		},
		[]string{"to"},
	)

	OutboxEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hiring_outbox_events_total",
			Help: "Total number of outbox events handled, by outcome",
		},
		[]string{"event_type", "outcome"},
	)

	OutboxHandleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hiring_outbox_handle_duration_seconds",
			Help:    "Duration of outbox event handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type"},
	)

	OutboxReclaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hiring_outbox_reclaimed_total",
			Help: "Total number of outbox events whose lease expired and were requeued",
		},
	)
)
