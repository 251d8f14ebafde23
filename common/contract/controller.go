package contract

import "context"

// EventCallback receives raw envelopes as a controller emits them, exactly
// once per transition, in transition order.
type EventCallback func(envelope RawEventEnvelope)

// InstrumentController is the capability contract every controller variant
// (simulator, hardware adapter) implements. Domain failures surface through
// reply fields, never through the error return of the transport layer, so
// callers can tell "operation failed" from "transport failed".
//
// Each controller exclusively owns the state of activities it created;
// activities are never shared across controllers.
type InstrumentController interface {
	// Descriptor returns the controller's identity and capability lists.
	Descriptor() ControllerDescriptor

	// ListActions returns the names of supported actions.
	ListActions() []string

	// ListActivities returns the names of supported activities.
	ListActivities() []string

	// PerformAction accepts an action and returns immediately. Completion is
	// reported asynchronously via an InstrumentActionCompletion event.
	PerformAction(ctx context.Context, cmd PerformActionCmd) ActionReply

	// StartActivity allocates an activity and drives its lifecycle
	// asynchronously. Unknown activity names are rejected without creating
	// state.
	StartActivity(ctx context.Context, req StartActivityRequest) StartActivityReply

	// CancelActivity forces a non-terminal activity to ACTIVITY_CANCELED.
	// Canceling a terminal activity is a caller error, distinct from an
	// unknown id.
	CancelActivity(ctx context.Context, cmd CancelActivityCmd) CancelReply

	// ActivityStatus returns the current status of an activity.
	ActivityStatus(ctx context.Context, activityID string) ActivityStatusReply

	// ActivityData returns the produced data product ids, only once the
	// activity is ACTIVITY_COMPLETED.
	ActivityData(ctx context.Context, activityID string) ActivityDataReply

	// SetEventCallback registers the event emission callback. A nil callback
	// makes emission a silent no-op.
	SetEventCallback(cb EventCallback)

	// Shutdown clears all in-memory activity state and stops pending timers.
	Shutdown()
}
