package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/adam-platform/instrument-bridge/common/contract"
	"github.com/adam-platform/instrument-bridge/common/logging"
	"github.com/adam-platform/instrument-bridge/common/messaging"
	natsclient "github.com/adam-platform/instrument-bridge/common/messaging/nats"
	"github.com/adam-platform/instrument-bridge/controller/internal/config"
	"github.com/adam-platform/instrument-bridge/controller/internal/handlers"
	"github.com/adam-platform/instrument-bridge/controller/internal/metrics"
	"github.com/adam-platform/instrument-bridge/controller/internal/server"
	"github.com/adam-platform/instrument-bridge/controller/internal/simulator"
	"github.com/adam-platform/instrument-bridge/controller/internal/stream"
)

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
	).With(logging.Service("controller"))
	logging.SetDefault(logger)

	slog.Info("Starting controller service",
		slog.Int("port", cfg.Server.Port),
		slog.String("controller_id", cfg.Controller.ID),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Initialize the simulated instrument controller
	ctrl := simulator.New(simulator.Config{
		ControllerID:  cfg.Controller.ID,
		Name:          cfg.Controller.Name,
		ActionDelay:   cfg.Controller.ActionDelay,
		ProgressDelay: cfg.Controller.ProgressDelay,
		CompleteDelay: cfg.Controller.CompleteDelay,
		Logger:        logger,
	})
	defer ctrl.Shutdown()

	// Event fan-out: SSE clients plus optional NATS publisher
	hub := stream.NewHub()

	var busClient *natsclient.Client
	if cfg.NATS.Enabled {
		busClient, err = natsclient.NewClient(natsclient.Config{
			URL:  cfg.NATS.URL,
			Name: fmt.Sprintf("controller-%s", cfg.Controller.ID),
		})
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer busClient.Close()
		log.Printf("Publishing raw events to %s", messaging.RawEventSubject(cfg.Controller.ID))
	} else {
		log.Println("NATS disabled - raw events available on /events only")
	}

	subject := messaging.RawEventSubject(cfg.Controller.ID)
	ctrl.SetEventCallback(func(envelope contract.RawEventEnvelope) {
		metrics.EventsEmitted.WithLabelValues(envelope.EventName).Inc()
		hub.Publish(envelope)

		if busClient == nil {
			return
		}
		if err := busClient.PublishJSON(context.Background(), subject, envelope); err != nil {
			slog.Error("Failed to publish raw event",
				logging.Subject(subject), logging.Error(err))
		}
	})

	// Initialize HTTP handlers
	handler := handlers.NewControllerHandler(ctrl, hub, logger)
	router := server.NewRouter(handler)

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// The SSE endpoint holds connections open; a write timeout would cut
	// streams off mid-flight.
	srv.WriteTimeout = 0

	// Start server in goroutine
	go func() {
		log.Printf("Controller service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ReadTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
