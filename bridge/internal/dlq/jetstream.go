package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/adam-platform/instrument-bridge/bridge/internal/metrics"
	"github.com/adam-platform/instrument-bridge/common/contract"
	"github.com/adam-platform/instrument-bridge/common/messaging"
	"github.com/adam-platform/instrument-bridge/common/messaging/nats"
)

// Writer persists dead-letter envelopes.
type Writer interface {
	Write(ctx context.Context, envelope contract.DeadLetterEnvelope) error
}

// JetStreamQueue writes dead-letter envelopes to NATS JetStream.
// Safe for use across multiple bridge instances.
type JetStreamQueue struct {
	js      *nats.JetStreamClient
	stream  jetstream.Stream
	written uint64
}

// NewJetStreamQueue creates a DLQ backed by NATS JetStream.
func NewJetStreamQueue(ctx context.Context, js *nats.JetStreamClient) (*JetStreamQueue, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream client is nil")
	}

	// Create or update the DLQ stream
	stream, err := js.CreateOrUpdateStream(ctx, nats.BridgeDLQStream)
	if err != nil {
		return nil, fmt.Errorf("create dlq stream: %w", err)
	}

	log.Printf("DLQ: JetStream stream %s ready", nats.BridgeDLQStream.Name)

	return &JetStreamQueue{
		js:     js,
		stream: stream,
	}, nil
}

// Write records a dead-letter envelope. The subject encodes the error code
// so operators can filter by failure class: bridge.dlq.<code>.
func (q *JetStreamQueue) Write(ctx context.Context, envelope contract.DeadLetterEnvelope) error {
	if q == nil {
		return nil
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("ERROR: failed to marshal DLQ envelope: %v", err)
		return err
	}

	subject := messaging.DLQSubject(strings.ToLower(envelope.Error.Code))

	if _, err := q.js.PublishSync(ctx, subject, data); err != nil {
		log.Printf("ERROR: failed to publish DLQ envelope: %v", err)
		return err
	}

	atomic.AddUint64(&q.written, 1)
	metrics.DeadLettersWritten.WithLabelValues(envelope.Error.Code).Inc()
	log.Printf("DLQ: published dead-letter envelope (code: %s)", envelope.Error.Code)

	return nil
}

// Stats returns DLQ metrics from JetStream.
func (q *JetStreamQueue) Stats(ctx context.Context) map[string]interface{} {
	if q == nil {
		return map[string]interface{}{
			"enabled": false,
			"backend": "jetstream",
		}
	}

	info, err := q.stream.Info(ctx)
	if err != nil {
		log.Printf("ERROR: failed to get DLQ stream info: %v", err)
		return map[string]interface{}{
			"enabled":       true,
			"backend":       "jetstream",
			"written_local": atomic.LoadUint64(&q.written),
			"error":         err.Error(),
		}
	}

	return map[string]interface{}{
		"enabled":        true,
		"backend":        "jetstream",
		"written_local":  atomic.LoadUint64(&q.written),
		"total_messages": info.State.Msgs,
		"total_bytes":    info.State.Bytes,
		"first_seq":      info.State.FirstSeq,
		"last_seq":       info.State.LastSeq,
		"consumer_count": info.State.Consumers,
	}
}

// List returns dead-letter envelopes from the stream, newest last.
func (q *JetStreamQueue) List(ctx context.Context, limit int) ([]contract.DeadLetterEnvelope, error) {
	if q == nil {
		return nil, fmt.Errorf("dlq not enabled")
	}

	if limit <= 0 {
		limit = 100
	}

	// Create an ephemeral consumer to read messages
	consumer, err := q.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: "bridge.dlq.>",
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxDeliver:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("create list consumer: %w", err)
	}

	var envelopes []contract.DeadLetterEnvelope
	msgs, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	for msg := range msgs.Messages() {
		var envelope contract.DeadLetterEnvelope
		if err := json.Unmarshal(msg.Data(), &envelope); err != nil {
			log.Printf("ERROR: failed to parse DLQ message: %v", err)
			continue
		}
		envelopes = append(envelopes, envelope)
	}

	if msgs.Error() != nil {
		log.Printf("WARN: fetch completed with error: %v", msgs.Error())
	}

	return envelopes, nil
}

// Purge removes all envelopes from the DLQ stream.
func (q *JetStreamQueue) Purge(ctx context.Context) error {
	if q == nil {
		return fmt.Errorf("dlq not enabled")
	}

	if err := q.stream.Purge(ctx); err != nil {
		return fmt.Errorf("purge dlq stream: %w", err)
	}

	log.Printf("DLQ: purged all messages from stream")
	return nil
}
