package seeder

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/adam-platform/instrument-bridge/common/contract"
	"github.com/adam-platform/instrument-bridge/common/messaging"
	"github.com/adam-platform/instrument-bridge/common/messaging/nats"
)

// Config controls a seeding run.
type Config struct {
	// NATSURL is the server the raw events are published to.
	NATSURL string

	// ControllerID is stamped into the raw-event subject.
	ControllerID string

	// Count is the number of events to publish.
	Count int

	// Interval is an optional delay between events (0 = as fast as possible).
	Interval time.Duration

	// TimeSpread backdates event timestamps over this window (0 = now).
	TimeSpread time.Duration

	// EventNames picks which raw events to generate.
	EventNames []string

	// MalformedRatio in [0,1] is the fraction of envelopes produced with
	// missing required fields to exercise the dead-letter path.
	MalformedRatio float64

	// UnknownRatio in [0,1] is the fraction of envelopes carrying an
	// unrecognized event name.
	UnknownRatio float64
}

// DefaultConfig returns a runnable baseline configuration.
func DefaultConfig() Config {
	return Config{
		NATSURL:      "nats://localhost:4222",
		ControllerID: "sim-controller-1",
		Count:        100,
		EventNames: []string{
			contract.EventActionCompletion,
			contract.EventActivityStatusChange,
		},
	}
}

// Runner publishes synthetic raw envelopes to the instrument event bus.
type Runner struct {
	cfg Config
	pub messaging.Publisher
}

// NewRunner connects to NATS and prepares a seeding run.
func NewRunner(cfg Config) (*Runner, error) {
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATSURL
	natsCfg.Name = "ibctl-seeder"

	client, err := nats.NewClient(natsCfg)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, pub: client}, nil
}

// Close releases the underlying NATS connection.
func (r *Runner) Close() error {
	return r.pub.Close()
}

// Run executes the seeding process.
func (r *Runner) Run(ctx context.Context) error {
	gofakeit.Seed(time.Now().UnixNano())

	log.Printf("Starting event seeder:")
	log.Printf("  NATS URL: %s", r.cfg.NATSURL)
	log.Printf("  Controller: %s", r.cfg.ControllerID)
	log.Printf("  Event count: %d", r.cfg.Count)
	log.Printf("  Time spread: %v", r.cfg.TimeSpread)
	log.Printf("  Event names: %v", r.cfg.EventNames)

	subject := messaging.RawEventSubject(r.cfg.ControllerID)
	successCount := 0
	failCount := 0

	for i := 0; i < r.cfg.Count; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		envelope := r.nextEnvelope(i)
		data, err := json.Marshal(envelope)
		if err != nil {
			failCount++
			continue
		}

		if err := r.pub.Publish(ctx, subject, data); err != nil {
			log.Printf("Failed to publish event %d: %v", i, err)
			failCount++
		} else {
			successCount++
		}

		if r.cfg.Interval > 0 && i < r.cfg.Count-1 {
			time.Sleep(r.cfg.Interval)
		}
	}

	log.Printf("Seeding complete:")
	log.Printf("  Success: %d events", successCount)
	log.Printf("  Failed: %d events", failCount)

	return nil
}

func (r *Runner) nextEnvelope(index int) contract.RawEventEnvelope {
	roll := rand.Float64()
	switch {
	case roll < r.cfg.MalformedRatio:
		return GenerateMalformed()
	case roll < r.cfg.MalformedRatio+r.cfg.UnknownRatio:
		return GenerateEvent("InstrumentTelemetrySnapshot", index, r.cfg.Count, r.cfg.TimeSpread)
	default:
		name := r.cfg.EventNames[rand.Intn(len(r.cfg.EventNames))]
		return GenerateEvent(name, index, r.cfg.Count, r.cfg.TimeSpread)
	}
}
