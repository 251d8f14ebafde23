// Package bridge composes correlation resolution, normalization, and handler
// fan-out into the platform's event bridge.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adam-platform/instrument-bridge/bridge/internal/correlation"
	"github.com/adam-platform/instrument-bridge/bridge/internal/metrics"
	"github.com/adam-platform/instrument-bridge/bridge/internal/normalizer"
	"github.com/adam-platform/instrument-bridge/common/contract"
	"github.com/adam-platform/instrument-bridge/common/logging"
)

// Handler consumes a canonical envelope. Handlers run sequentially in
// registration order; a handler's failure is isolated from the others.
type Handler func(ctx context.Context, envelope contract.CanonicalEnvelope) error

// Option configures a Bridge.
type Option func(*Bridge)

// WithDefaultCorrelation sets the fallback context used when an event cannot
// be resolved by activity id. It is only used if fully specified.
func WithDefaultCorrelation(cc contract.CorrelationContext) Option {
	return func(b *Bridge) { b.defaultCorrelation = cc }
}

// WithControllerID stamps resolved contexts that lack an
// instrumentControllerId.
func WithControllerID(id string) Option {
	return func(b *Bridge) { b.controllerID = id }
}

// WithLogger overrides the default logger.
func WithLogger(logger *logging.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// Bridge receives raw envelopes from controllers, resolves correlation,
// normalizes, and delivers canonical envelopes to registered handlers.
//
// The bridge does not dead-letter failures itself: the caller owns the
// routing metadata (broker, source topic) a dead-letter envelope needs.
type Bridge struct {
	normalizer         *normalizer.Normalizer
	lookup             correlation.Lookup
	defaultCorrelation contract.CorrelationContext
	controllerID       string
	logger             *logging.Logger

	running atomic.Bool

	mu       sync.Mutex
	handlers []Handler
}

// New creates a stopped Bridge.
func New(n *normalizer.Normalizer, lookup correlation.Lookup, opts ...Option) *Bridge {
	b := &Bridge{
		normalizer: n,
		lookup:     lookup,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start enables event processing.
func (b *Bridge) Start() {
	b.running.Store(true)
	b.logger.Info("event bridge started")
}

// Stop disables event processing. In-flight calls complete; subsequent
// events are rejected.
func (b *Bridge) Stop() {
	b.running.Store(false)
	b.logger.Info("event bridge stopped")
}

// IsRunning reports whether the bridge accepts events.
func (b *Bridge) IsRunning() bool {
	return b.running.Load()
}

// OnEvent registers a canonical-event handler. Handlers are invoked in
// registration order for every successfully normalized event.
func (b *Bridge) OnEvent(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// ProcessEvent resolves correlation and normalizes a raw envelope.
//
// Returns (envelope, nil) on success after handler fan-out, (nil, error) when
// normalization fails so the caller can dead-letter, and (nil, nil) when the
// event was dropped: bridge stopped, or correlation unresolvable - a bridge
// configuration gap, not a malformed message.
func (b *Bridge) ProcessEvent(ctx context.Context, envelope contract.RawEventEnvelope) (*contract.CanonicalEnvelope, *contract.StructuredError) {
	if !b.IsRunning() {
		b.logger.WarnContext(ctx, "event rejected: bridge not running",
			logging.EventName(envelope.EventName))
		metrics.EventsProcessed.WithLabelValues("rejected").Inc()
		return nil, nil
	}

	cc, ok := b.resolveCorrelation(ctx, envelope)
	if !ok {
		b.logger.WarnContext(ctx, "event dropped: no correlation resolvable",
			logging.EventName(envelope.EventName))
		metrics.EventsProcessed.WithLabelValues("dropped").Inc()
		return nil, nil
	}

	start := time.Now()
	canonical, serr := b.normalizer.Normalize(envelope, cc, "")
	metrics.NormalizationDuration.Observe(time.Since(start).Seconds())

	if serr != nil {
		b.logger.WarnContext(ctx, "normalization failed",
			logging.EventName(envelope.EventName),
			slog.String(logging.FieldErrorCode, serr.Code))
		metrics.EventsProcessed.WithLabelValues("failed").Inc()
		metrics.NormalizationErrors.WithLabelValues(serr.Code).Inc()
		return nil, serr
	}

	b.dispatch(ctx, *canonical)
	metrics.EventsProcessed.WithLabelValues("normalized").Inc()
	return canonical, nil
}

// resolveCorrelation finds the context for an envelope. Status-change events
// resolve by activity id; everything else, and lookup misses, fall back to
// the default context when fully specified.
func (b *Bridge) resolveCorrelation(ctx context.Context, envelope contract.RawEventEnvelope) (contract.CorrelationContext, bool) {
	if envelope.EventName == contract.EventActivityStatusChange {
		if id, ok := envelope.EventData["activityId"].(string); ok && id != "" {
			cc, err := b.lookup.Get(ctx, id)
			if err != nil {
				b.logger.ErrorContext(ctx, "correlation lookup failed",
					logging.ActivityID(id), logging.Error(err))
			} else if cc != nil {
				return b.stamped(*cc), true
			}
		}
	}

	if b.defaultCorrelation.Complete() {
		return b.stamped(b.defaultCorrelation), true
	}
	return contract.CorrelationContext{}, false
}

// stamped fills in the controller id when the context lacks one.
func (b *Bridge) stamped(cc contract.CorrelationContext) contract.CorrelationContext {
	if cc.InstrumentControllerID == "" && b.controllerID != "" {
		cc.InstrumentControllerID = b.controllerID
	}
	return cc
}

// dispatch invokes all handlers sequentially, isolating each failure.
func (b *Bridge) dispatch(ctx context.Context, envelope contract.CanonicalEnvelope) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for i, h := range handlers {
		if err := b.invoke(ctx, h, envelope); err != nil {
			b.logger.ErrorContext(ctx, "event handler failed",
				logging.EventType(envelope.EventType),
				slog.Int("handler_index", i),
				logging.Error(err))
			metrics.HandlerErrors.Inc()
		}
	}
}

// invoke runs one handler, converting a panic into an error so a bad handler
// cannot take down delivery to the rest.
func (b *Bridge) invoke(ctx context.Context, h Handler, envelope contract.CanonicalEnvelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicErr{value: r}
		}
	}()
	return h(ctx, envelope)
}

type panicErr struct {
	value interface{}
}

func (e panicErr) Error() string {
	return fmt.Sprintf("handler panic: %v", e.value)
}
