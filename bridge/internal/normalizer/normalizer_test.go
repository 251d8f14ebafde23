package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)

func fixedClock() time.Time { return fixedNow }

func fullCorrelation() contract.CorrelationContext {
	return contract.CorrelationContext{
		CampaignID:             "camp-001",
		ExperimentRunID:        "run-042",
		TraceID:                "trace-abc",
		InstrumentControllerID: "sim-controller-1",
	}
}

func actionCompletion() contract.RawEventEnvelope {
	return contract.RawEventEnvelope{
		EventName: contract.EventActionCompletion,
		EventData: map[string]interface{}{
			"actionName":   "HOME",
			"actionStatus": contract.ActionSuccess,
			"timeBegin":    "2026-03-14T09:26:50Z",
			"timeEnd":      "2026-03-14T09:26:52Z",
		},
	}
}

func activityStatusChange() contract.RawEventEnvelope {
	return contract.RawEventEnvelope{
		EventName: contract.EventActivityStatusChange,
		EventData: map[string]interface{}{
			"activityId":     "act_0001",
			"activityName":   "SCAN",
			"activityStatus": contract.ActivityInProgress,
		},
	}
}

func TestNormalizeActionCompletion(t *testing.T) {
	n := New(fixedClock)

	env, serr := n.Normalize(actionCompletion(), fullCorrelation(), "")
	require.Nil(t, serr)
	require.NotNil(t, env)

	assert.Equal(t, contract.TypeActionCompletion, env.EventType)
	// timeEnd wins when there is no override
	assert.Equal(t, "2026-03-14T09:26:52Z", env.OccurredAt)
	assert.Equal(t, "camp-001", env.Correlation.CampaignID)
	assert.Equal(t, "run-042", env.Correlation.ExperimentRunID)
	assert.Equal(t, "trace-abc", env.Correlation.TraceID)
	assert.Equal(t, "sim-controller-1", env.Correlation.InstrumentControllerID)
	assert.Equal(t, "HOME", env.Payload["actionName"])
}

func TestNormalizeActivityStatusChange(t *testing.T) {
	n := New(fixedClock)

	env, serr := n.Normalize(activityStatusChange(), fullCorrelation(), "")
	require.Nil(t, serr)

	assert.Equal(t, contract.TypeActivityStatusChange, env.EventType)
	// No payload timestamps: falls back to the clock, second precision
	assert.Equal(t, "2026-03-14T09:26:53Z", env.OccurredAt)
	assert.Equal(t, contract.ActivityInProgress, env.Payload["activityStatus"])
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New(fixedClock)

	first, serr := n.Normalize(activityStatusChange(), fullCorrelation(), "")
	require.Nil(t, serr)
	second, serr := n.Normalize(activityStatusChange(), fullCorrelation(), "")
	require.Nil(t, serr)

	assert.Equal(t, first, second)
}

func TestNormalizeOccurredAtPriority(t *testing.T) {
	n := New(fixedClock)

	tests := []struct {
		name     string
		override string
		want     string
	}{
		{
			name:     "override wins over payload timestamps",
			override: "2026-03-14T00:00:00Z",
			want:     "2026-03-14T00:00:00Z",
		},
		{
			name: "timeEnd wins over timeBegin",
			want: "2026-03-14T09:26:52Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, serr := n.Normalize(actionCompletion(), fullCorrelation(), tt.override)
			require.Nil(t, serr)
			assert.Equal(t, tt.want, out.OccurredAt)
		})
	}
}

func TestNormalizeTimeBeginFallback(t *testing.T) {
	n := New(fixedClock)

	// Well-formed activity event carrying only timeBegin in its payload
	env := activityStatusChange()
	env.EventData["timeBegin"] = "2026-03-14T09:00:00Z"

	out, serr := n.Normalize(env, fullCorrelation(), "")
	require.Nil(t, serr)
	assert.Equal(t, "2026-03-14T09:00:00Z", out.OccurredAt)
}

func TestNormalizeUnknownEvent(t *testing.T) {
	n := New(fixedClock)

	env := contract.RawEventEnvelope{
		EventName: "InstrumentTelemetrySnapshot",
		EventData: map[string]interface{}{"reading": "42"},
	}

	out, serr := n.Normalize(env, fullCorrelation(), "")
	assert.Nil(t, out)
	require.NotNil(t, serr)
	assert.Equal(t, contract.CodeUnknownEvent, serr.Code)
	assert.Equal(t, "InstrumentTelemetrySnapshot", serr.Details["eventName"])
}

func TestNormalizeUnknownEventNeverSchemaError(t *testing.T) {
	n := New(fixedClock)

	// Unknown name plus a payload that would fail every known schema.
	// Classification must still be UNKNOWN_EVENT.
	env := contract.RawEventEnvelope{
		EventName: "NotARealEvent",
		EventData: map[string]interface{}{},
	}

	_, serr := n.Normalize(env, fullCorrelation(), "")
	require.NotNil(t, serr)
	assert.Equal(t, contract.CodeUnknownEvent, serr.Code)
}

func TestNormalizeMissingFields(t *testing.T) {
	n := New(fixedClock)

	tests := []struct {
		name        string
		envelope    contract.RawEventEnvelope
		wantMissing []string
	}{
		{
			name: "action completion missing status and timestamps",
			envelope: contract.RawEventEnvelope{
				EventName: contract.EventActionCompletion,
				EventData: map[string]interface{}{"actionName": "MOVE"},
			},
			wantMissing: []string{"actionStatus", "timeBegin", "timeEnd"},
		},
		{
			name: "status change missing everything",
			envelope: contract.RawEventEnvelope{
				EventName: contract.EventActivityStatusChange,
				EventData: map[string]interface{}{},
			},
			wantMissing: []string{"activityId", "activityName", "activityStatus"},
		},
		{
			name: "non-string field counts as missing",
			envelope: contract.RawEventEnvelope{
				EventName: contract.EventActivityStatusChange,
				EventData: map[string]interface{}{
					"activityId":     12,
					"activityName":   "BUILD",
					"activityStatus": contract.ActivityPending,
				},
			},
			wantMissing: []string{"activityId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, serr := n.Normalize(tt.envelope, fullCorrelation(), "")
			assert.Nil(t, out)
			require.NotNil(t, serr)
			assert.Equal(t, contract.CodeSchemaValidation, serr.Code)
			assert.Equal(t, tt.wantMissing, toStrings(t, serr.Details["missing"]))
		})
	}
}

func TestNormalizeStructuralErrors(t *testing.T) {
	n := New(fixedClock)

	t.Run("empty event name", func(t *testing.T) {
		env := contract.RawEventEnvelope{EventData: map[string]interface{}{}}
		_, serr := n.Normalize(env, fullCorrelation(), "")
		require.NotNil(t, serr)
		assert.Equal(t, contract.CodeSchemaValidation, serr.Code)
		assert.Equal(t, []string{"eventName"}, toStrings(t, serr.Details["missing"]))
	})

	t.Run("nil event data", func(t *testing.T) {
		env := contract.RawEventEnvelope{EventName: contract.EventActionCompletion}
		_, serr := n.Normalize(env, fullCorrelation(), "")
		require.NotNil(t, serr)
		assert.Equal(t, contract.CodeSchemaValidation, serr.Code)
		assert.Equal(t, []string{"eventData"}, toStrings(t, serr.Details["missing"]))
	})
}

func TestNormalizeIncompleteCorrelation(t *testing.T) {
	n := New(fixedClock)

	cc := fullCorrelation()
	cc.ExperimentRunID = ""
	cc.TraceID = ""

	_, serr := n.Normalize(actionCompletion(), cc, "")
	require.NotNil(t, serr)
	assert.Equal(t, contract.CodeSchemaValidation, serr.Code)
	assert.Equal(t, []string{"experimentRunId", "traceId"}, toStrings(t, serr.Details["missing"]))
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	n := New(fixedClock)

	env := actionCompletion()
	cc := fullCorrelation()

	_, serr := n.Normalize(env, cc, "")
	require.Nil(t, serr)

	assert.Equal(t, actionCompletion(), env)
	assert.Equal(t, fullCorrelation(), cc)
}

func toStrings(t *testing.T, v interface{}) []string {
	t.Helper()
	out, ok := v.([]string)
	require.True(t, ok, "details.missing should be []string, got %T", v)
	return out
}

func TestNormalizeRejectsMalformedTimestamp(t *testing.T) {
	n := New(fixedClock)

	tests := []struct {
		name     string
		envelope contract.RawEventEnvelope
		override string
		field    string
	}{
		{
			name: "timeEnd is not a timestamp",
			envelope: func() contract.RawEventEnvelope {
				env := actionCompletion()
				env.EventData["timeEnd"] = "later"
				return env
			}(),
			field: "timeEnd",
		},
		{
			name: "timeBegin adopted and malformed",
			envelope: func() contract.RawEventEnvelope {
				env := activityStatusChange()
				env.EventData["timeBegin"] = "yesterday-ish"
				return env
			}(),
			field: "timeBegin",
		},
		{
			name:     "override malformed",
			envelope: actionCompletion(),
			override: "not-a-time",
			field:    "occurredAt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, serr := n.Normalize(tt.envelope, fullCorrelation(), tt.override)
			require.Nil(t, env)
			require.NotNil(t, serr)
			assert.Equal(t, contract.CodeSchemaValidation, serr.Code)
			assert.Equal(t, []string{tt.field}, toStrings(t, serr.Details["missing"]))
		})
	}
}

func TestNormalizeMalformedTimestampNotSkipped(t *testing.T) {
	n := New(fixedClock)

	// A garbage timeEnd must fail outright, not quietly fall back to
	// timeBegin or the clock.
	env := actionCompletion()
	env.EventData["timeEnd"] = "later"

	out, serr := n.Normalize(env, fullCorrelation(), "")
	require.Nil(t, out)
	require.NotNil(t, serr)
	assert.Equal(t, contract.CodeSchemaValidation, serr.Code)
}

func TestNormalizeOutputValidatesCanonicalSchema(t *testing.T) {
	n := New(fixedClock)
	validator, err := contract.NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name     string
		envelope contract.RawEventEnvelope
		override string
	}{
		{name: "action completion", envelope: actionCompletion()},
		{name: "activity status change, clock fallback", envelope: activityStatusChange()},
		{name: "with override", envelope: actionCompletion(), override: "2026-03-14T10:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, serr := n.Normalize(tt.envelope, fullCorrelation(), tt.override)
			require.Nil(t, serr)
			require.NotNil(t, env)
			assert.Nil(t, validator.ValidateCanonical(*env))
		})
	}
}
