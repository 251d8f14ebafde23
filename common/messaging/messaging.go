// Package messaging defines the broker-neutral contract the platform services
// use to move instrument events around. Controllers publish raw envelopes, the
// bridge consumes them and republishes canonical events, and the dead-letter
// path archives what could not be normalized. None of those services should
// care which broker carries the bytes.
package messaging

import (
	"context"
	"time"
)

// Message is one unit of traffic on the event bus.
type Message struct {
	// Subject the message was published to, e.g. "instrument.events.raw.sim-controller-1".
	Subject string

	// Data is the raw payload. Event envelopes are JSON-encoded.
	Data []byte

	// Reply carries the response subject for request/reply exchanges.
	Reply string

	// Metadata holds optional header pairs.
	Metadata map[string]string

	// Timestamp records when the message was published, when the broker
	// provides it, or when it was received otherwise.
	Timestamp time.Time
}

// MessageHandler processes one received message. A non-nil error marks the
// message as failed; whether that triggers redelivery depends on the
// subscription type.
type MessageHandler func(ctx context.Context, msg *Message) error

// Publisher sends messages to the bus.
type Publisher interface {
	// Publish sends data to subject, fire-and-forget.
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishMsg sends a Message, including any reply subject and headers.
	PublishMsg(ctx context.Context, msg *Message) error

	// Request publishes and waits up to timeout for a single response.
	Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*Message, error)

	// Close releases the publisher's resources.
	Close() error
}

// Subscriber receives messages from the bus.
type Subscriber interface {
	// Subscribe delivers every message on subject to handler (fan-out).
	Subscribe(subject string, handler MessageHandler) (Subscription, error)

	// QueueSubscribe joins a queue group: each message goes to exactly one
	// member. Bridge replicas share the raw-event stream this way.
	QueueSubscribe(subject, queue string, handler MessageHandler) (Subscription, error)

	// Close unsubscribes everything and releases resources.
	Close() error
}

// Subscription is a live subscription handle.
type Subscription interface {
	// Unsubscribe stops delivery.
	Unsubscribe() error

	// Subject returns the subscribed subject.
	Subject() string

	// IsValid reports whether the subscription still delivers.
	IsValid() bool
}

// Client is the full bus connection most services hold.
type Client interface {
	Publisher
	Subscriber

	// Drain stops accepting new traffic and lets in-flight messages finish
	// before closing.
	Drain() error

	// IsConnected reports whether the broker connection is up.
	IsConnected() bool
}
