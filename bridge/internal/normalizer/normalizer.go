// Package normalizer converts raw controller envelopes into canonical
// platform envelopes.
//
// Normalization is a pure function: no network, no mutation of inputs, and an
// injectable clock as the only time source. Identical inputs always produce
// identical output, which the contract tests rely on for golden-fixture
// equality.
package normalizer

import (
	"time"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

// Required payload fields per recognized event, in field-declaration order.
// details.missing reproduces this order exactly.
var (
	actionCompletionFields     = []string{"actionName", "actionStatus", "timeBegin", "timeEnd"}
	activityStatusChangeFields = []string{"activityId", "activityName", "activityStatus"}
)

// Normalizer transforms raw envelopes. Safe for concurrent use.
type Normalizer struct {
	now func() time.Time
}

// New creates a Normalizer. A nil now falls back to time.Now; tests inject a
// fixed clock for determinism.
func New(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize validates and transforms a raw envelope. occurredAtOverride, when
// non-empty, wins over any payload-derived timestamp.
//
// Failures are structured, never panics: SCHEMA_VALIDATION_ERROR for shape or
// missing-field problems, UNKNOWN_EVENT for unrecognized event names. The two
// are never conflated.
func (n *Normalizer) Normalize(envelope contract.RawEventEnvelope, correlation contract.CorrelationContext, occurredAtOverride string) (*contract.CanonicalEnvelope, *contract.StructuredError) {
	// Structural checks
	if envelope.EventName == "" {
		return nil, contract.SchemaError("envelope eventName must be a non-empty string", []string{"eventName"})
	}
	if envelope.EventData == nil {
		return nil, contract.SchemaError("envelope eventData must be an object", []string{"eventData"})
	}

	// Correlation checks
	if missing := missingCorrelationKeys(correlation); len(missing) > 0 {
		return nil, contract.SchemaError("correlation context is incomplete", missing)
	}

	// Dispatch by event name
	var required []string
	switch envelope.EventName {
	case contract.EventActionCompletion:
		required = actionCompletionFields
	case contract.EventActivityStatusChange:
		required = activityStatusChangeFields
	default:
		return nil, contract.UnknownEventError(envelope.EventName)
	}

	if missing := missingFields(envelope.EventData, required); len(missing) > 0 {
		return nil, contract.SchemaError("payload is missing required fields", missing)
	}

	// Timestamp derivation: override, then timeEnd, then timeBegin, then now.
	// Candidates must be RFC 3339; adopting anything else would produce an
	// occurredAt the canonical schema rejects.
	occurredAt, serr := n.deriveOccurredAt(envelope.EventData, occurredAtOverride)
	if serr != nil {
		return nil, serr
	}

	// Correlation sanitization: the typed context carries exactly the four
	// allowed keys, so building the output from it drops anything else.
	return &contract.CanonicalEnvelope{
		EventType:  contract.CanonicalType(envelope.EventName),
		OccurredAt: occurredAt,
		Correlation: contract.CorrelationContext{
			CampaignID:             correlation.CampaignID,
			ExperimentRunID:        correlation.ExperimentRunID,
			TraceID:                correlation.TraceID,
			InstrumentControllerID: correlation.InstrumentControllerID,
		},
		Payload: envelope.EventData,
	}, nil
}

// deriveOccurredAt picks the event timestamp: the override when given, else
// the payload's timeEnd, else timeBegin, else the injected clock. A candidate
// that is present but not RFC 3339 fails normalization rather than being
// skipped; passing it through would break the canonical schema downstream,
// and silently preferring a weaker candidate would hide the corruption.
func (n *Normalizer) deriveOccurredAt(data map[string]interface{}, override string) (string, *contract.StructuredError) {
	candidates := []struct {
		field string
		value string
	}{
		{"occurredAt", override},
		{"timeEnd", stringField(data, "timeEnd")},
		{"timeBegin", stringField(data, "timeBegin")},
	}

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339, c.value); err != nil {
			return "", contract.SchemaError("timestamp is not RFC 3339", []string{c.field})
		}
		return c.value, nil
	}

	return n.now().UTC().Truncate(time.Second).Format(time.RFC3339), nil
}

// missingCorrelationKeys names empty required correlation keys in
// declaration order.
func missingCorrelationKeys(c contract.CorrelationContext) []string {
	var missing []string
	if c.CampaignID == "" {
		missing = append(missing, "campaignId")
	}
	if c.ExperimentRunID == "" {
		missing = append(missing, "experimentRunId")
	}
	if c.TraceID == "" {
		missing = append(missing, "traceId")
	}
	return missing
}

// missingFields returns the required fields that are absent or not non-empty
// strings, preserving the required order.
func missingFields(data map[string]interface{}, required []string) []string {
	var missing []string
	for _, field := range required {
		if stringField(data, field) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// stringField returns data[key] if it is a non-empty string, else "".
func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
