// Package messaging defines standard subject names for the platform message bus.
package messaging

import "fmt"

// Subject constants for the instrument event bus.
// Follow the pattern: {domain}.{stage}.{resource}
const (
	// Raw controller events - published by controller transports, consumed by
	// the event bridge. Append .{controllerID} for a specific controller.
	SubjectInstrumentEventsRaw = "instrument.events.raw"

	// Canonical events - published by the bridge after normalization.
	// Append .{eventType} for a specific canonical type.
	SubjectEventsNormalized = "adam.events.normalized"

	// Dead-letter subjects - failed normalizations, keyed by error code.
	SubjectBridgeDLQ = "bridge.dlq"

	// Correlation registration - experiment orchestration announces the
	// correlation context for an activity before starting it.
	SubjectCorrelationRegistered = "adam.correlation.registered"
)

// RawEventSubject returns the raw-event subject for a controller.
func RawEventSubject(controllerID string) string {
	return fmt.Sprintf("%s.%s", SubjectInstrumentEventsRaw, controllerID)
}

// NormalizedSubject returns the canonical-event subject for an event type.
// Dots inside the event type are preserved; consumers subscribe with a
// wildcard ("adam.events.normalized.>").
func NormalizedSubject(eventType string) string {
	return fmt.Sprintf("%s.%s", SubjectEventsNormalized, eventType)
}

// DLQSubject returns the dead-letter subject for an error code.
func DLQSubject(code string) string {
	return fmt.Sprintf("%s.%s", SubjectBridgeDLQ, code)
}
