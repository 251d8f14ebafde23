package seeder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

func TestGenerateEventActionCompletion(t *testing.T) {
	env := GenerateEvent(contract.EventActionCompletion, 0, 1, 0)

	assert.Equal(t, contract.EventActionCompletion, env.EventName)
	require.NotNil(t, env.EventData)

	name, ok := env.EventData["actionName"].(string)
	require.True(t, ok)
	assert.Contains(t, actionNames, name)

	status, ok := env.EventData["actionStatus"].(string)
	require.True(t, ok)
	assert.Contains(t, []string{contract.ActionSuccess, contract.ActionFailure}, status)

	begin, ok := env.EventData["timeBegin"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, begin)
	assert.NoError(t, err)

	end, ok := env.EventData["timeEnd"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, end)
	assert.NoError(t, err)
}

func TestGenerateEventFailurePayloadUsesStatusMsg(t *testing.T) {
	sawFailure := false
	for i := 0; i < 200; i++ {
		env := GenerateEvent(contract.EventActionCompletion, i, 200, 0)
		require.NotNil(t, env.EventData)

		_, hasErrorMsg := env.EventData["errorMsg"]
		assert.False(t, hasErrorMsg, "failure detail belongs under statusMsg")

		if env.EventData["actionStatus"] == contract.ActionFailure {
			sawFailure = true
			msg, ok := env.EventData["statusMsg"].(string)
			require.True(t, ok, "failed action should carry a statusMsg")
			assert.NotEmpty(t, msg)
		}
	}
	require.True(t, sawFailure, "expected at least one failed action in 200 events")
}

func TestGenerateEventActivityStatusChange(t *testing.T) {
	env := GenerateEvent(contract.EventActivityStatusChange, 0, 1, 0)

	assert.Equal(t, contract.EventActivityStatusChange, env.EventName)
	require.NotNil(t, env.EventData)

	id, ok := env.EventData["activityId"].(string)
	require.True(t, ok)
	assert.Regexp(t, `^act_\d{4}$`, id)

	name, ok := env.EventData["activityName"].(string)
	require.True(t, ok)
	assert.Contains(t, activityNames, name)

	status, ok := env.EventData["activityStatus"].(string)
	require.True(t, ok)
	assert.Contains(t, activityStatuses, status)
}

func TestGenerateEventUnknownNamePassesThrough(t *testing.T) {
	env := GenerateEvent("InstrumentTelemetrySnapshot", 0, 1, 0)

	assert.Equal(t, "InstrumentTelemetrySnapshot", env.EventName)
	require.NotNil(t, env.EventData)
}

func TestGenerateEventValidatesAgainstSchema(t *testing.T) {
	validator, err := contract.NewValidator()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		env := GenerateEvent(contract.EventActionCompletion, i, 20, time.Hour)
		assert.Nil(t, validator.ValidateRaw(env), "envelope %d should validate", i)

		env = GenerateEvent(contract.EventActivityStatusChange, i, 20, time.Hour)
		assert.Nil(t, validator.ValidateRaw(env), "envelope %d should validate", i)
	}
}

func TestGenerateMalformedFailsValidation(t *testing.T) {
	validator, err := contract.NewValidator()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		env := GenerateMalformed()
		assert.NotNil(t, validator.ValidateRaw(env), "malformed envelope %d should be rejected", i)
	}
}

func TestEventTimeSpread(t *testing.T) {
	now := time.Now()
	spread := 2 * time.Hour

	oldest := eventTime(0, 10, spread)
	newest := eventTime(9, 10, spread)

	assert.True(t, oldest.Before(newest), "index 0 should be oldest")
	assert.True(t, now.Sub(oldest) >= spread, "oldest event should be at least the full spread back")
	// Jitter stays under a minute
	assert.True(t, now.Sub(oldest) < spread+2*time.Minute)
}

func TestEventTimeNoSpread(t *testing.T) {
	before := time.Now()
	got := eventTime(3, 10, 0)
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
