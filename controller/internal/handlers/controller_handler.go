package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/adam-platform/instrument-bridge/common/contract"
	"github.com/adam-platform/instrument-bridge/common/httputil"
	"github.com/adam-platform/instrument-bridge/common/logging"
	"github.com/adam-platform/instrument-bridge/controller/internal/metrics"
	"github.com/adam-platform/instrument-bridge/controller/internal/stream"
)

// ControllerHandler exposes the Instrument Controller capability over HTTP.
// Command acceptance is a 202-style acknowledgment; domain errors travel in
// explicit errorMsg fields, except unknown activity ids on the id-addressed
// routes, which are 404s per the reference contract.
type ControllerHandler struct {
	ctrl   contract.InstrumentController
	hub    *stream.Hub
	logger *logging.Logger
}

// NewControllerHandler creates a handler for the given controller.
func NewControllerHandler(ctrl contract.InstrumentController, hub *stream.Hub, logger *logging.Logger) *ControllerHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ControllerHandler{ctrl: ctrl, hub: hub, logger: logger}
}

// ListActions handles GET /v0.1/actions.
func (h *ControllerHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{
		"actionNames": h.ctrl.ListActions(),
	})
}

// ListActivities handles GET /v0.1/activities.
func (h *ControllerHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{
		"activityNames": h.ctrl.ListActivities(),
	})
}

// Describe handles GET /v0.1/descriptor.
func (h *ControllerHandler) Describe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.ctrl.Descriptor())
}

// PerformAction handles POST /v0.1/actions/perform.
func (h *ControllerHandler) PerformAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var cmd contract.PerformActionCmd
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cmd.ActionName == "" {
		httputil.WriteError(w, http.StatusBadRequest, "actionName is required")
		return
	}

	reply := h.ctrl.PerformAction(r.Context(), cmd)
	httputil.WriteAccepted(w, reply)
}

// StartActivity handles POST /v0.1/activities/start.
func (h *ControllerHandler) StartActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req contract.StartActivityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ActivityName == "" {
		httputil.WriteError(w, http.StatusBadRequest, "activityName is required")
		return
	}

	reply := h.ctrl.StartActivity(r.Context(), req)
	httputil.WriteJSON(w, http.StatusOK, reply)
}

// CancelActivity handles POST /v0.1/activities/cancel.
func (h *ControllerHandler) CancelActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var cmd contract.CancelActivityCmd
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cmd.ActivityID == "" || cmd.Reason == "" {
		httputil.WriteError(w, http.StatusBadRequest, "activityId and reason are required")
		return
	}

	reply := h.ctrl.CancelActivity(r.Context(), cmd)
	if !reply.Accepted && strings.HasPrefix(reply.ErrorMsg, "Unknown activityId") {
		httputil.WriteError(w, http.StatusNotFound, reply.ErrorMsg)
		return
	}
	httputil.WriteAccepted(w, reply)
}

// ActivityStatus handles GET /v0.1/activities/{id}/status.
func (h *ControllerHandler) ActivityStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := activityIDFromPath(r.URL.Path, "/status")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "missing activity id")
		return
	}

	reply := h.ctrl.ActivityStatus(r.Context(), id)
	if reply.ErrorMsg != "" {
		httputil.WriteError(w, http.StatusNotFound, reply.ErrorMsg)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reply)
}

// ActivityData handles GET /v0.1/activities/{id}/data.
func (h *ControllerHandler) ActivityData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := activityIDFromPath(r.URL.Path, "/data")
	if id == "" {
		httputil.WriteError(w, http.StatusBadRequest, "missing activity id")
		return
	}

	reply := h.ctrl.ActivityData(r.Context(), id)
	if strings.HasPrefix(reply.ErrorMsg, "Unknown activityId") {
		httputil.WriteError(w, http.StatusNotFound, reply.ErrorMsg)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reply)
}

// Events handles GET /events: a server-sent-event stream of raw envelopes as
// they occur.
func (h *ControllerHandler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.hub.Subscribe()
	defer cancel()

	metrics.EventStreamClients.Inc()
	defer metrics.EventStreamClients.Dec()

	for {
		select {
		case <-r.Context().Done():
			return
		case envelope, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(envelope)
			if err != nil {
				h.logger.Error("failed to marshal event for stream", logging.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", envelope.EventName, data)
			flusher.Flush()
		}
	}
}

// Health handles GET /healthz.
func (h *ControllerHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// Ready handles GET /readyz.
func (h *ControllerHandler) Ready(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"ready": true})
}

// activityIDFromPath extracts {id} from /v0.1/activities/{id}<suffix>.
func activityIDFromPath(path, suffix string) string {
	const prefix = "/v0.1/activities/"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
