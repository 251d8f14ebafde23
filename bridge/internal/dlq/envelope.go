// Package dlq wraps normalization failures in durable dead-letter envelopes
// and routes them to a JetStream-backed sink.
package dlq

import (
	"time"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

// ToEnvelope builds a dead-letter envelope for a message that failed
// normalization. It is total: a nil failure falls back to UNKNOWN_ERROR
// rather than failing.
//
// original is preserved untouched inside original.envelope; raw carries the
// unparsed transport bytes when the call site has them. A zero receivedAt
// defaults to the current time; tests pass a fixed value for determinism.
func ToEnvelope(original contract.RawEventEnvelope, raw []byte, failure *contract.StructuredError, source contract.DLQSource, cc *contract.CorrelationContext, receivedAt time.Time) contract.DeadLetterEnvelope {
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	serr := contract.StructuredError{
		Code:    contract.CodeUnknownError,
		Message: "no failure detail provided",
	}
	if failure != nil {
		serr = *failure
	}
	if serr.Code == "" {
		serr.Code = contract.CodeUnknownError
	}

	return contract.DeadLetterEnvelope{
		DLQVersion: contract.DLQVersion,
		ReceivedAt: receivedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
		Source:     source,
		Error:      serr,
		Original: contract.DLQOriginal{
			Envelope: original,
			Raw:      raw,
		},
		Correlation: cc,
	}
}
