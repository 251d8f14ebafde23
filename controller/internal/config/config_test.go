package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Server.Port != 8095 {
		t.Errorf("Server.Port = %d, want 8095", cfg.Server.Port)
	}

	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}

	if cfg.Controller.ID != "sim-controller-1" {
		t.Errorf("Controller.ID = %q, want %q", cfg.Controller.ID, "sim-controller-1")
	}

	if cfg.Controller.ActionDelay != 200*time.Millisecond {
		t.Errorf("Controller.ActionDelay = %v, want 200ms", cfg.Controller.ActionDelay)
	}

	if cfg.Controller.ProgressDelay != 200*time.Millisecond {
		t.Errorf("Controller.ProgressDelay = %v, want 200ms", cfg.Controller.ProgressDelay)
	}

	if cfg.Controller.CompleteDelay != 500*time.Millisecond {
		t.Errorf("Controller.CompleteDelay = %v, want 500ms", cfg.Controller.CompleteDelay)
	}

	if !cfg.NATS.Enabled {
		t.Error("NATS.Enabled should be true by default")
	}

	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("NATS.URL = %q, want %q", cfg.NATS.URL, "nats://localhost:4222")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9095\ncontroller:\n  id: bench-controller\nnats:\n  enabled: false\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9095 {
		t.Errorf("Server.Port = %d, want 9095", cfg.Server.Port)
	}
	if cfg.Controller.ID != "bench-controller" {
		t.Errorf("Controller.ID = %q, want %q", cfg.Controller.ID, "bench-controller")
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should be overridden to false")
	}
	// Untouched keys keep their defaults
	if cfg.Controller.ActionDelay != 200*time.Millisecond {
		t.Errorf("Controller.ActionDelay = %v, want 200ms", cfg.Controller.ActionDelay)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() with non-existent file path should return error")
	}
}
