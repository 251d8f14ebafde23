package contract

// KeyVal is a string key/value option passed with commands.
type KeyVal struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PerformActionCmd requests a fire-and-forget action. Completion arrives
// asynchronously as an InstrumentActionCompletion event.
type PerformActionCmd struct {
	ActionName    string   `json:"actionName"`
	ActionOptions []KeyVal `json:"actionOptions,omitempty"`
}

// ActionReply acknowledges an action command.
type ActionReply struct {
	Accepted bool   `json:"accepted"`
	ErrorMsg string `json:"errorMsg,omitempty"`
}

// StartActivityRequest starts a long-running activity. ActivityDeadline, when
// set, is an RFC3339 timestamp after which the activity is canceled instead
// of completed.
type StartActivityRequest struct {
	ActivityName     string   `json:"activityName"`
	ActivityOptions  []KeyVal `json:"activityOptions,omitempty"`
	ActivityDeadline string   `json:"activityDeadline,omitempty"`
}

// StartActivityReply carries the allocated activity id, or an empty id plus
// errorMsg when the request was rejected.
type StartActivityReply struct {
	ActivityID string `json:"activityId"`
	ErrorMsg   string `json:"errorMsg,omitempty"`
}

// CancelActivityCmd cancels a running activity.
type CancelActivityCmd struct {
	ActivityID string `json:"activityId"`
	Reason     string `json:"reason"`
}

// CancelReply acknowledges a cancellation. Confirmed distinguishes a
// cancellation the controller actually executed from best-effort local
// bookkeeping when the underlying hardware could not be reached.
type CancelReply struct {
	Accepted  bool   `json:"accepted"`
	Confirmed bool   `json:"confirmed"`
	ErrorMsg  string `json:"errorMsg,omitempty"`
}

// ActivityStatusReply reports the current state of an activity. Unknown ids
// produce a FAILED-shaped reply with errorMsg set.
type ActivityStatusReply struct {
	ActivityStatus string `json:"activityStatus"`
	TimeBegin      string `json:"timeBegin,omitempty"`
	TimeEnd        string `json:"timeEnd,omitempty"`
	StatusMsg      string `json:"statusMsg,omitempty"`
	ErrorMsg       string `json:"errorMsg,omitempty"`
}

// ActivityDataReply lists the data products of a completed activity. Products
// is empty with errorMsg set for any non-COMPLETED status.
type ActivityDataReply struct {
	Products []string `json:"products"`
	ErrorMsg string   `json:"errorMsg,omitempty"`
}

// ControllerDescriptor identifies a controller and its discovered
// capabilities. Immutable after construction.
type ControllerDescriptor struct {
	ControllerID   string   `json:"controllerId"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	ActionNames    []string `json:"actionNames"`
	ActivityNames  []string `json:"activityNames"`
}

// RawEventEnvelope is the wire-level event emitted by controllers. Untrusted:
// nothing beyond basic shape is guaranteed until normalization.
type RawEventEnvelope struct {
	EventName string                 `json:"eventName"`
	EventData map[string]interface{} `json:"eventData"`
}

// CorrelationContext ties a controller-local event to its experiment-level
// context. The first three fields are required for normalization.
type CorrelationContext struct {
	CampaignID             string `json:"campaignId"`
	ExperimentRunID        string `json:"experimentRunId"`
	TraceID                string `json:"traceId"`
	InstrumentControllerID string `json:"instrumentControllerId,omitempty"`
}

// Complete reports whether all required correlation fields are non-empty.
func (c CorrelationContext) Complete() bool {
	return c.CampaignID != "" && c.ExperimentRunID != "" && c.TraceID != ""
}

// CanonicalEnvelope is the platform-internal, schema-validated event
// representation. Payload is the original eventData, structurally unchanged.
type CanonicalEnvelope struct {
	EventType   string                 `json:"eventType"`
	OccurredAt  string                 `json:"occurredAt"`
	Correlation CorrelationContext     `json:"correlation"`
	Payload     map[string]interface{} `json:"payload"`
}

// DLQVersion is the dead-letter envelope schema version.
const DLQVersion = "1"

// DLQSource identifies where a dead-lettered message came from.
type DLQSource struct {
	Broker      string `json:"broker"`
	SourceTopic string `json:"sourceTopic"`
}

// DLQOriginal preserves the failed message. Envelope is the parsed form;
// Raw carries the unparsed transport bytes when available.
type DLQOriginal struct {
	Envelope RawEventEnvelope `json:"envelope"`
	Raw      []byte           `json:"raw"`
}

// DeadLetterEnvelope wraps a message that failed normalization, durable
// enough for storage, inspection, and replay.
type DeadLetterEnvelope struct {
	DLQVersion  string              `json:"dlqVersion"`
	ReceivedAt  string              `json:"receivedAt"`
	Source      DLQSource           `json:"source"`
	Error       StructuredError     `json:"error"`
	Original    DLQOriginal         `json:"original"`
	Correlation *CorrelationContext `json:"correlation,omitempty"`
}
