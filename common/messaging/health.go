package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// HealthStatus reports the state of a bus connection, shaped for JSON
// health endpoints.
type HealthStatus struct {
	Connected bool          `json:"connected"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
}

// CheckClientHealth verifies a Client can reach the broker. It pings an
// internal subject to measure round-trip latency; a no-responders reply still
// proves the server answered, so it counts as healthy.
func CheckClientHealth(ctx context.Context, client Client) HealthStatus {
	var status HealthStatus

	if client == nil {
		status.Error = "client is nil"
		return status
	}

	status.Connected = client.IsConnected()
	if !status.Connected {
		status.Error = "not connected to message broker"
		return status
	}

	start := time.Now()
	_, err := client.Request(ctx, "_HEALTH.ping", []byte("ping"), 2*time.Second)
	status.Latency = time.Since(start)

	if err != nil && !errors.Is(err, nats.ErrNoResponders) && !errors.Is(err, nats.ErrTimeout) {
		status.Error = fmt.Sprintf("health check failed: %v", err)
	}

	return status
}
