package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	bridgepkg "github.com/adam-platform/instrument-bridge/bridge/internal/bridge"
	"github.com/adam-platform/instrument-bridge/bridge/internal/config"
	"github.com/adam-platform/instrument-bridge/bridge/internal/correlation"
	"github.com/adam-platform/instrument-bridge/bridge/internal/dlq"
	"github.com/adam-platform/instrument-bridge/bridge/internal/normalizer"
	"github.com/adam-platform/instrument-bridge/common/contract"
	"github.com/adam-platform/instrument-bridge/common/httputil"
	"github.com/adam-platform/instrument-bridge/common/logging"
	"github.com/adam-platform/instrument-bridge/common/messaging"
	natsclient "github.com/adam-platform/instrument-bridge/common/messaging/nats"
)

// correlationRegistration is the payload on adam.correlation.registered.
type correlationRegistration struct {
	ActivityID  string                      `json:"activityId"`
	Correlation contract.CorrelationContext `json:"correlation"`
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("bridge"))
	logging.SetDefault(logger)

	slog.Info("Starting event bridge service",
		slog.Int("port", cfg.Server.Port),
		slog.String("nats_url", cfg.NATS.URL),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Compile the capability contract schemas
	validator, err := contract.NewValidator()
	if err != nil {
		log.Fatalf("Failed to compile contract schemas: %v", err)
	}

	// Initialize correlation lookup store
	var lookup correlation.Lookup
	if cfg.Redis.Enabled {
		store, err := correlation.NewRedisStore(cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis correlation store: %v", err)
		}
		defer store.Close()
		lookup = store
		log.Printf("Correlation store: redis (%s, ttl %s)", cfg.Redis.URL, cfg.Redis.TTL)
	} else {
		lookup = correlation.NewMemoryStore()
		log.Println("Correlation store: in-memory")
		log.Println("WARNING: in-memory correlation store does not support multiple bridge instances")
	}

	// Connect to NATS (JetStream needed for the DLQ)
	jsClient, err := natsclient.NewJetStreamClient(natsclient.Config{
		URL:  cfg.NATS.URL,
		Name: "event-bridge",
	})
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer jsClient.Close()

	// Initialize Dead Letter Queue
	var dlqWriter *dlq.JetStreamQueue
	if cfg.DLQ.Enabled {
		dlqWriter, err = dlq.NewJetStreamQueue(context.Background(), jsClient)
		if err != nil {
			log.Fatalf("Failed to initialize JetStream DLQ: %v", err)
		}
		log.Println("Dead Letter Queue enabled (backend: jetstream)")
	} else {
		log.Println("Dead Letter Queue disabled - normalization failures will only be logged")
	}

	// Assemble the bridge
	opts := []bridgepkg.Option{bridgepkg.WithLogger(logger)}
	defaultCC := contract.CorrelationContext{
		CampaignID:      cfg.Correlation.DefaultCampaignID,
		ExperimentRunID: cfg.Correlation.DefaultExperimentRunID,
		TraceID:         cfg.Correlation.DefaultTraceID,
	}
	if defaultCC.Complete() {
		opts = append(opts, bridgepkg.WithDefaultCorrelation(defaultCC))
	}
	if cfg.Correlation.ControllerID != "" {
		opts = append(opts, bridgepkg.WithControllerID(cfg.Correlation.ControllerID))
	}

	eventBridge := bridgepkg.New(normalizer.New(nil), lookup, opts...)

	// Publish every canonical envelope to the platform bus, after a final
	// schema gate.
	eventBridge.OnEvent(func(ctx context.Context, envelope contract.CanonicalEnvelope) error {
		if serr := validator.ValidateCanonical(envelope); serr != nil {
			return fmt.Errorf("canonical envelope failed schema gate: %s", serr.Message)
		}
		return jsClient.PublishJSON(ctx, messaging.NormalizedSubject(envelope.EventType), envelope)
	})

	eventBridge.Start()
	defer eventBridge.Stop()

	// Correlation registrations arrive over the bus from experiment
	// orchestration, ahead of activity starts.
	regSub, err := jsClient.Subscribe(messaging.SubjectCorrelationRegistered, func(ctx context.Context, msg *messaging.Message) error {
		var reg correlationRegistration
		if err := json.Unmarshal(msg.Data, &reg); err != nil {
			return fmt.Errorf("parse correlation registration: %w", err)
		}
		if reg.ActivityID == "" || !reg.Correlation.Complete() {
			logger.Warn("ignoring incomplete correlation registration",
				logging.ActivityID(reg.ActivityID))
			return nil
		}
		return lookup.Set(ctx, reg.ActivityID, reg.Correlation)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to correlation registrations: %v", err)
	}
	defer regSub.Unsubscribe()

	// Raw controller events flow through a durable JetStream work queue, so
	// events emitted while no bridge was running are recovered on startup.
	// Replicas share the durable consumer, which load-balances like a queue
	// group.
	var sink dlqSink
	if dlqWriter != nil {
		sink = dlqWriter
	}

	rawSubject := messaging.SubjectInstrumentEventsRaw + ".>"
	if _, err := jsClient.CreateOrUpdateStream(context.Background(), natsclient.RawEventsStream); err != nil {
		log.Fatalf("Failed to ensure raw events stream: %v", err)
	}
	if _, err := jsClient.CreateOrUpdateConsumer(context.Background(), natsclient.RawEventsStream.Name, natsclient.ConsumerConfig{
		Name:          cfg.NATS.QueueGroup,
		FilterSubject: rawSubject,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		MaxAckPending: 256,
	}); err != nil {
		log.Fatalf("Failed to ensure raw events consumer: %v", err)
	}

	stopConsume, err := jsClient.ConsumeMessages(context.Background(), natsclient.RawEventsStream.Name, cfg.NATS.QueueGroup,
		rawEventHandler(eventBridge, validator, sink, logger))
	if err != nil {
		log.Fatalf("Failed to consume raw events: %v", err)
	}
	defer stopConsume()

	log.Printf("Consuming raw events from %s (stream: %s, consumer: %s)",
		rawSubject, natsclient.RawEventsStream.Name, cfg.NATS.QueueGroup)

	// Health and metrics endpoints
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := messaging.CheckClientHealth(r.Context(), jsClient)
		code := http.StatusOK
		if !status.Connected {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, status)
	})
	mux.HandleFunc("/dlq/stats", func(w http.ResponseWriter, r *http.Request) {
		if dlqWriter == nil {
			httputil.WriteError(w, http.StatusNotFound, "dead letter queue is disabled")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, dlqWriter.Stats(r.Context()))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Bridge service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// dlqSink is the slice of the dead-letter queue the consumer path needs.
type dlqSink interface {
	Write(ctx context.Context, envelope contract.DeadLetterEnvelope) error
}

// rawEventHandler builds the consumer callback for raw controller envelopes:
// parse, process, and dead-letter every failure, including a canonical
// envelope that fails the final schema gate. A normalization failure is never
// a consumer error; returning one would only trigger redelivery of a message
// that cannot get better.
func rawEventHandler(eventBridge *bridgepkg.Bridge, validator *contract.Validator, sink dlqSink, logger *logging.Logger) messaging.MessageHandler {
	return func(ctx context.Context, msg *messaging.Message) error {
		var envelope contract.RawEventEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			// Unparseable bytes still get dead-lettered; the envelope stays
			// zero-valued and the raw bytes carry the evidence.
			serr := contract.SchemaError(fmt.Sprintf("unparseable raw envelope: %v", err), nil)
			deadLetter(ctx, sink, logger, envelope, msg, serr)
			return nil
		}

		env, serr := eventBridge.ProcessEvent(ctx, envelope)
		if serr != nil {
			deadLetter(ctx, sink, logger, envelope, msg, serr)
			return nil
		}
		if env != nil {
			if serr := validator.ValidateCanonical(*env); serr != nil {
				deadLetter(ctx, sink, logger, envelope, msg, serr)
			}
		}
		return nil
	}
}

// deadLetter wraps a failure and routes it to the DLQ sink when enabled.
func deadLetter(ctx context.Context, writer dlqSink, logger *logging.Logger, envelope contract.RawEventEnvelope, msg *messaging.Message, serr *contract.StructuredError) {
	dle := dlq.ToEnvelope(envelope, msg.Data, serr, contract.DLQSource{
		Broker:      "nats",
		SourceTopic: msg.Subject,
	}, nil, msg.Timestamp)

	if writer == nil {
		logger.WarnContext(ctx, "dead-letter sink disabled, dropping failed event",
			logging.EventName(envelope.EventName),
			slog.String(logging.FieldErrorCode, dle.Error.Code))
		return
	}
	if err := writer.Write(ctx, dle); err != nil {
		logger.ErrorContext(ctx, "failed to write dead-letter envelope", logging.Error(err))
	}
}
