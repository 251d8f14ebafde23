// Package server provides HTTP server setup for the controller service.
package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adam-platform/instrument-bridge/common/middleware"
	"github.com/adam-platform/instrument-bridge/controller/internal/handlers"
)

// NewRouter constructs a ServeMux with controller API routes registered.
func NewRouter(h *handlers.ControllerHandler) http.Handler {
	mux := http.NewServeMux()

	// Discovery
	mux.HandleFunc("/v0.1/actions", h.ListActions)
	mux.HandleFunc("/v0.1/activities", h.ListActivities)
	mux.HandleFunc("/v0.1/descriptor", h.Describe)

	// Command execution
	mux.HandleFunc("/v0.1/actions/perform", h.PerformAction)
	mux.HandleFunc("/v0.1/activities/start", h.StartActivity)
	mux.HandleFunc("/v0.1/activities/cancel", h.CancelActivity)

	// Status and data retrieval for a specific activity
	mux.HandleFunc("/v0.1/activities/", activityRouteHandler(h))

	// Raw event stream
	mux.HandleFunc("/events", h.Events)

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}

// activityRouteHandler routes /v0.1/activities/{id}/* requests.
func activityRouteHandler(h *handlers.ControllerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case strings.HasSuffix(path, "/status"):
			h.ActivityStatus(w, r)
		case strings.HasSuffix(path, "/data"):
			h.ActivityData(w, r)
		default:
			http.NotFound(w, r)
		}
	}
}
