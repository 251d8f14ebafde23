// Package httputil provides shared helpers for HTTP request and response
// handling across services.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON writes data as a JSON response with the given status code.
// Encoding failures are logged; the status line is already on the wire by
// then, so there is nothing else to do.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode JSON response", slog.String("error", err.Error()))
	}
}

// WriteError writes a JSON error body of the form {"error": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteAccepted writes a 202 acknowledgment for asynchronously executed
// commands.
func WriteAccepted(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusAccepted, data)
}
