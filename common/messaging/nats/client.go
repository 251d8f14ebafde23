// Package nats backs the messaging interfaces with NATS, in both core and
// JetStream flavors.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/adam-platform/instrument-bridge/common/logging"
	"github.com/adam-platform/instrument-bridge/common/messaging"
)

// Config holds NATS connection settings.
type Config struct {
	// URL of the NATS server, e.g. "nats://localhost:4222".
	URL string

	// Name identifies this connection in server monitoring.
	Name string

	// MaxReconnects caps reconnection attempts. -1 retries forever.
	MaxReconnects int

	// ReconnectWait is the pause between reconnection attempts.
	ReconnectWait time.Duration

	// Timeout bounds the initial connect.
	Timeout time.Duration

	// Optional credentials.
	Username string
	Password string
	Token    string
}

// DefaultConfig returns a Config suited to long-lived service connections.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "instrument-bridge-client",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Client implements messaging.Client over a core NATS connection.
type Client struct {
	conn *nats.Conn
	mu   sync.RWMutex
	subs []*subscription
}

// NewClient connects to NATS and returns a Client. Reconnects are handled by
// the underlying connection; state changes are logged through slog.
func NewClient(cfg Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", logging.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &Client{conn: conn}, nil
}

// Publish sends data to subject.
func (c *Client) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.conn.Publish(subject, data)
}

// PublishJSON marshals v and publishes it to subject.
func (c *Client) PublishJSON(ctx context.Context, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return c.Publish(ctx, subject, data)
}

// PublishMsg sends a full Message, carrying reply subject and headers.
func (c *Client) PublishMsg(ctx context.Context, msg *messaging.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := &nats.Msg{
		Subject: msg.Subject,
		Data:    msg.Data,
		Reply:   msg.Reply,
	}
	if len(msg.Metadata) > 0 {
		out.Header = make(nats.Header)
		for k, v := range msg.Metadata {
			out.Header.Set(k, v)
		}
	}

	return c.conn.PublishMsg(out)
}

// Request publishes and waits up to timeout for one response.
func (c *Client) Request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*messaging.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := c.conn.Request(subject, data, timeout)
	if err != nil {
		return nil, err
	}
	return toMessage(resp), nil
}

// Subscribe delivers every message on subject to handler.
func (c *Client) Subscribe(subject string, handler messaging.MessageHandler) (messaging.Subscription, error) {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(context.Background(), toMessage(msg)); err != nil {
			slog.Error("message handler failed", logging.Subject(subject), logging.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	return c.track(sub), nil
}

// QueueSubscribe joins queue so each message reaches one member.
func (c *Client) QueueSubscribe(subject, queue string, handler messaging.MessageHandler) (messaging.Subscription, error) {
	sub, err := c.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		if err := handler(context.Background(), toMessage(msg)); err != nil {
			slog.Error("message handler failed",
				logging.Subject(subject),
				slog.String("queue", queue),
				logging.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	return c.track(sub), nil
}

func (c *Client) track(sub *nats.Subscription) *subscription {
	s := &subscription{natsSub: sub}
	c.mu.Lock()
	c.subs = append(c.subs, s)
	c.mu.Unlock()
	return s
}

// Close unsubscribes everything and drops the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil

	c.conn.Close()
	return nil
}

// Drain lets in-flight messages finish before closing.
func (c *Client) Drain() error {
	return c.conn.Drain()
}

// IsConnected reports whether the connection is up.
func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}

type subscription struct {
	natsSub *nats.Subscription
}

func (s *subscription) Unsubscribe() error {
	return s.natsSub.Unsubscribe()
}

func (s *subscription) Subject() string {
	return s.natsSub.Subject
}

func (s *subscription) IsValid() bool {
	return s.natsSub.IsValid()
}

func toMessage(msg *nats.Msg) *messaging.Message {
	m := &messaging.Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Reply:     msg.Reply,
		Timestamp: time.Now(), // core NATS carries no publish time
	}
	if msg.Header != nil {
		m.Metadata = make(map[string]string)
		for k := range msg.Header {
			m.Metadata[k] = msg.Header.Get(k)
		}
	}
	return m
}
