package contract

// CapabilityVersion is the Instrument Controller capability version all wire
// shapes in this package belong to.
const CapabilityVersion = "v0.1"

// Raw event names emitted by controllers.
const (
	EventActionCompletion     = "InstrumentActionCompletion"
	EventActivityStatusChange = "InstrumentActivityStatusChange"
)

// Canonical event types produced by the bridge.
const (
	TypeActionCompletion     = "adam.intersect.instrument_action_completion"
	TypeActivityStatusChange = "adam.intersect.instrument_activity_status_change"
)

// Action completion statuses.
const (
	ActionSuccess = "ACTION_SUCCESS"
	ActionFailure = "ACTION_FAILURE"
)

// Activity lifecycle statuses. Transitions are monotonic:
// PENDING -> IN_PROGRESS -> {COMPLETED | FAILED | CANCELED}.
const (
	ActivityPending    = "ACTIVITY_PENDING"
	ActivityInProgress = "ACTIVITY_IN_PROGRESS"
	ActivityCompleted  = "ACTIVITY_COMPLETED"
	ActivityFailed     = "ACTIVITY_FAILED"
	ActivityCanceled   = "ACTIVITY_CANCELED"
)

// CanonicalType maps a raw event name to its canonical event type.
// Returns empty string for unrecognized names.
func CanonicalType(eventName string) string {
	switch eventName {
	case EventActionCompletion:
		return TypeActionCompletion
	case EventActivityStatusChange:
		return TypeActivityStatusChange
	default:
		return ""
	}
}

// TerminalStatus reports whether an activity status is terminal.
func TerminalStatus(status string) bool {
	switch status {
	case ActivityCompleted, ActivityFailed, ActivityCanceled:
		return true
	default:
		return false
	}
}
