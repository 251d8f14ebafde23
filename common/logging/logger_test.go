package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/adam-platform/instrument-bridge/common/middleware"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		format string
	}{
		{
			name:   "json format with info level",
			level:  slog.LevelInfo,
			format: "json",
		},
		{
			name:   "text format with debug level",
			level:  slog.LevelDebug,
			format: "text",
		},
		{
			name:   "default format (json) with error level",
			level:  slog.LevelError,
			format: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
			if logger.Logger == nil {
				t.Fatal("expected non-nil underlying logger")
			}
		})
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if logger.Logger == nil {
		t.Fatal("expected non-nil underlying logger")
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := &Logger{Logger: slog.New(handler)}

	tests := []struct {
		name        string
		ctx         context.Context
		expectReqID bool
	}{
		{
			name:        "context with request ID",
			ctx:         context.WithValue(context.Background(), middleware.RequestIDKey, "test-req-123"),
			expectReqID: true,
		},
		{
			name:        "context without request ID",
			ctx:         context.Background(),
			expectReqID: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			contextLogger := logger.WithContext(tt.ctx)
			contextLogger.Info("test message")

			hasReqID := strings.Contains(buf.String(), "request_id")
			if hasReqID != tt.expectReqID {
				t.Errorf("expected request_id presence %v, got output: %s", tt.expectReqID, buf.String())
			}
			if tt.expectReqID && !strings.Contains(buf.String(), "test-req-123") {
				t.Errorf("expected request ID value in log output, got: %s", buf.String())
			}
		})
	}
}

func TestInfoContext(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := &Logger{Logger: slog.New(handler)}

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "info-test-123")
	logger.InfoContext(ctx, "test info message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test info message") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "info-test-123") {
		t.Errorf("expected request ID in output, got: %s", output)
	}
	if !strings.Contains(output, "INFO") {
		t.Errorf("expected INFO level in output, got: %s", output)
	}
}

func TestErrorContext(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelError,
	})
	logger := &Logger{Logger: slog.New(handler)}

	logger.ErrorContext(context.Background(), "test error message", "error", "something went wrong")

	output := buf.String()
	if !strings.Contains(output, "test error message") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "ERROR") {
		t.Errorf("expected ERROR level in output, got: %s", output)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := &Logger{Logger: slog.New(handler)}

	enriched := logger.With("service", "bridge", "version", "0.1.0")
	if enriched == nil {
		t.Fatal("expected non-nil logger from With()")
	}

	enriched.Info("test message")
	output := buf.String()

	if !strings.Contains(output, "bridge") {
		t.Errorf("expected service attribute in output, got: %s", output)
	}
	if !strings.Contains(output, "0.1.0") {
		t.Errorf("expected version attribute in output, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
