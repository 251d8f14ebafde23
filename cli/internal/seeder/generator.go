// Package seeder generates synthetic raw instrument events for testing and
// development. Events have the same shape controllers emit, with a
// configurable fraction of deliberately malformed envelopes to exercise the
// bridge's dead-letter path.
package seeder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

var actionNames = []string{"HOME", "MOVE", "CALIBRATE"}

var activityNames = []string{"BUILD", "SCAN"}

var activityStatuses = []string{
	contract.ActivityPending,
	contract.ActivityInProgress,
	contract.ActivityCompleted,
	contract.ActivityFailed,
	contract.ActivityCanceled,
}

// GenerateEvent produces one synthetic raw envelope. index spreads timestamps
// backwards over timeSpread so a seeded stream looks like recorded history.
func GenerateEvent(eventName string, index, total int, timeSpread time.Duration) contract.RawEventEnvelope {
	occurred := eventTime(index, total, timeSpread)

	switch eventName {
	case contract.EventActionCompletion:
		began := occurred.Add(-time.Duration(rand.Intn(5000)) * time.Millisecond)
		status := contract.ActionSuccess
		statusMsg := ""
		if rand.Intn(10) == 0 {
			status = contract.ActionFailure
			statusMsg = "Calibration target not found"
		}
		data := map[string]interface{}{
			"actionName":   actionNames[rand.Intn(len(actionNames))],
			"actionStatus": status,
			"timeBegin":    timestamp(began),
			"timeEnd":      timestamp(occurred),
		}
		if statusMsg != "" {
			data["statusMsg"] = statusMsg
		}
		return contract.RawEventEnvelope{
			EventName: contract.EventActionCompletion,
			EventData: data,
		}

	case contract.EventActivityStatusChange:
		return contract.RawEventEnvelope{
			EventName: contract.EventActivityStatusChange,
			EventData: map[string]interface{}{
				"activityId":     fmt.Sprintf("act_%04d", rand.Intn(10000)),
				"activityName":   activityNames[rand.Intn(len(activityNames))],
				"activityStatus": activityStatuses[rand.Intn(len(activityStatuses))],
				"statusMsg":      gofakeit.Sentence(4),
			},
		}

	default:
		// Unknown event names flow through to UNKNOWN_EVENT handling.
		return contract.RawEventEnvelope{
			EventName: eventName,
			EventData: map[string]interface{}{
				"detail": gofakeit.Sentence(3),
			},
		}
	}
}

// GenerateMalformed produces an envelope that fails schema validation: a
// known event name with required fields missing.
func GenerateMalformed() contract.RawEventEnvelope {
	if rand.Intn(2) == 0 {
		return contract.RawEventEnvelope{
			EventName: contract.EventActionCompletion,
			EventData: map[string]interface{}{
				"actionName": actionNames[rand.Intn(len(actionNames))],
			},
		}
	}
	return contract.RawEventEnvelope{
		EventName: contract.EventActivityStatusChange,
		EventData: map[string]interface{}{
			"activityId": fmt.Sprintf("act_%04d", rand.Intn(10000)),
		},
	}
}

func eventTime(index, total int, timeSpread time.Duration) time.Time {
	now := time.Now()
	if timeSpread <= 0 || total <= 1 {
		return now
	}
	// Oldest first, with jitter so events don't land on a perfect grid.
	offset := time.Duration(float64(timeSpread) * float64(total-1-index) / float64(total-1))
	jitter := time.Duration(rand.Int63n(int64(time.Minute)))
	return now.Add(-offset - jitter)
}

func timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
