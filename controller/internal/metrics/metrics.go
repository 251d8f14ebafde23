package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Action metrics
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_actions_total",
			Help: "Total number of actions performed, by name and completion status",
		},
		[]string{"action", "status"},
	)

	// Activity lifecycle metrics
	ActivitiesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "controller_activities_started_total",
			Help: "Total number of activities started",
		},
	)

	ActivitiesFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_activities_finished_total",
			Help: "Total number of activities reaching a terminal status",
		},
		[]string{"status"},
	)

	// Event stream metrics
	EventsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controller_events_emitted_total",
			Help: "Total number of raw envelopes emitted, by event name",
		},
		[]string{"event"},
	)

	EventStreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "controller_event_stream_clients",
			Help: "Current number of connected event stream subscribers",
		},
	)
)
