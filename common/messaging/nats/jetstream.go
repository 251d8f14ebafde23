package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/adam-platform/instrument-bridge/common/messaging"
)

// JetStreamClient layers JetStream persistence over a core Client. The bridge
// uses it for the raw-event buffer and the dead-letter archive; the CLI uses
// it to inspect both.
type JetStreamClient struct {
	*Client
	js jetstream.JetStream
}

// StreamConfig is the subset of stream settings the platform tunes.
type StreamConfig struct {
	Name     string
	Subjects []string

	// Retention limits. Zero values leave the server defaults in place.
	MaxAge   time.Duration
	MaxBytes int64
	MaxMsgs  int64

	Retention jetstream.RetentionPolicy
	Storage   jetstream.StorageType
}

// ConsumerConfig describes a durable consumer.
type ConsumerConfig struct {
	Name          string
	FilterSubject string

	// AckWait is how long the server waits for an ack before redelivering.
	AckWait time.Duration

	MaxDeliver    int
	MaxAckPending int
}

// NewJetStreamClient connects and wraps the connection with a JetStream
// context.
func NewJetStreamClient(cfg Config) (*JetStreamClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(client.conn)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return &JetStreamClient{Client: client, js: js}, nil
}

// CreateOrUpdateStream ensures a stream exists with the given settings.
func (c *JetStreamClient) CreateOrUpdateStream(ctx context.Context, cfg StreamConfig) (jetstream.Stream, error) {
	stream, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		MaxAge:    cfg.MaxAge,
		MaxBytes:  cfg.MaxBytes,
		MaxMsgs:   cfg.MaxMsgs,
		Retention: cfg.Retention,
		Storage:   cfg.Storage,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
	}
	return stream, nil
}

// CreateOrUpdateConsumer ensures a durable consumer exists on streamName.
func (c *JetStreamClient) CreateOrUpdateConsumer(ctx context.Context, streamName string, cfg ConsumerConfig) (jetstream.Consumer, error) {
	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return nil, fmt.Errorf("look up stream %s: %w", streamName, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          cfg.Name,
		Durable:       cfg.Name,
		FilterSubject: cfg.FilterSubject,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliver,
		MaxAckPending: cfg.MaxAckPending,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure consumer %s: %w", cfg.Name, err)
	}
	return consumer, nil
}

// PublishSync publishes to a stream subject and waits for the server ack.
func (c *JetStreamClient) PublishSync(ctx context.Context, subject string, data []byte) (*jetstream.PubAck, error) {
	return c.js.Publish(ctx, subject, data)
}

// ConsumeMessages pumps a durable consumer through handler. Handler errors
// NAK the message with a short delay so the server redelivers it. The
// returned function stops consumption.
func (c *JetStreamClient) ConsumeMessages(ctx context.Context, streamName, consumerName string, handler messaging.MessageHandler) (func(), error) {
	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return nil, fmt.Errorf("look up stream %s: %w", streamName, err)
	}

	consumer, err := stream.Consumer(ctx, consumerName)
	if err != nil {
		return nil, fmt.Errorf("look up consumer %s: %w", consumerName, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		m := &messaging.Message{
			Subject: msg.Subject(),
			Data:    msg.Data(),
		}

		if md, err := msg.Metadata(); err == nil {
			m.Timestamp = md.Timestamp
		} else {
			m.Timestamp = time.Now()
		}

		if headers := msg.Headers(); headers != nil {
			m.Metadata = make(map[string]string)
			for k := range headers {
				m.Metadata[k] = headers.Get(k)
			}
		}

		if err := handler(consumeCtx, m); err != nil {
			_ = msg.NakWithDelay(5 * time.Second)
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start consume: %w", err)
	}

	return func() {
		cancel()
		cons.Stop()
	}, nil
}

// Stream definitions shared by the bridge and the CLI.
var (
	// RawEventsStream buffers raw controller envelopes so the bridge can
	// recover events emitted while it was down. Work-queue retention:
	// a consumed event leaves the stream.
	RawEventsStream = StreamConfig{
		Name:      "INSTRUMENT_RAW_EVENTS",
		Subjects:  []string{"instrument.events.raw.>"},
		MaxAge:    24 * time.Hour,
		MaxBytes:  100 * 1024 * 1024,
		MaxMsgs:   100000,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	}

	// BridgeDLQStream archives dead-letter envelopes for inspection and
	// replay. Limits retention: entries stay until an operator purges them
	// or the stream hits its caps.
	BridgeDLQStream = StreamConfig{
		Name:      "BRIDGE_DLQ",
		Subjects:  []string{"bridge.dlq.>"},
		MaxAge:    7 * 24 * time.Hour,
		MaxBytes:  100 * 1024 * 1024,
		MaxMsgs:   100000,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	}
)
