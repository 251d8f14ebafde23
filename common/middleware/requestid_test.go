package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDGenerated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if captured == "" {
		t.Error("expected a generated request ID in the context")
	}
	if got := w.Header().Get("X-Request-ID"); got != captured {
		t.Errorf("response header %q does not match context value %q", got, captured)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if captured != "client-supplied-id" {
		t.Errorf("expected propagated id, got %q", captured)
	}
	if got := w.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("expected propagated id in response header, got %q", got)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("expected empty string for missing request ID, got %q", got)
	}
}
