package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event processing metrics
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_events_processed_total",
			Help: "Total number of raw envelopes processed, by outcome",
		},
		[]string{"outcome"}, // normalized, dropped, failed, rejected
	)

	NormalizationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_normalization_errors_total",
			Help: "Total number of normalization failures, by error code",
		},
		[]string{"code"},
	)

	NormalizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_normalization_duration_seconds",
			Help:    "Duration of event normalization in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Handler delivery metrics
	HandlerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_handler_errors_total",
			Help: "Total number of canonical-event handler failures",
		},
	)

	// Dead-letter metrics
	DeadLettersWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_dead_letters_written_total",
			Help: "Total number of dead-letter envelopes written, by error code",
		},
		[]string{"code"},
	)
)
