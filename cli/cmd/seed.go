package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adam-platform/instrument-bridge/cli/internal/seeder"
	"github.com/adam-platform/instrument-bridge/cli/pkg/output"
)

var (
	seedCount          int
	seedInterval       time.Duration
	seedTimeSpread     time.Duration
	seedControllerID   string
	seedEventNames     string
	seedMalformedRatio float64
	seedUnknownRatio   float64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Publish synthetic raw events",
	Long: `Generate and publish synthetic raw instrument events to NATS.

Events are published to the raw-event subject for the given controller id,
so a running event bridge will pick them up, normalize them, and dead-letter
the deliberately malformed fraction.`,
	Example: `  ibctl seed --count 500
  ibctl seed --count 1000 --time-spread 24h --malformed-ratio 0.05
  ibctl seed --events InstrumentActivityStatusChange --interval 100ms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := seeder.DefaultConfig()
		cfg.NATSURL = activeProfile(cmd).NATSURL
		cfg.ControllerID = seedControllerID
		cfg.Count = seedCount
		cfg.Interval = seedInterval
		cfg.TimeSpread = seedTimeSpread
		cfg.MalformedRatio = seedMalformedRatio
		cfg.UnknownRatio = seedUnknownRatio
		if seedEventNames != "" {
			cfg.EventNames = nil
			for _, name := range strings.Split(seedEventNames, ",") {
				cfg.EventNames = append(cfg.EventNames, strings.TrimSpace(name))
			}
		}

		if cfg.Count <= 0 {
			return fmt.Errorf("--count must be positive")
		}
		if cfg.MalformedRatio+cfg.UnknownRatio > 1 {
			return fmt.Errorf("--malformed-ratio plus --unknown-ratio must not exceed 1")
		}

		runner, err := seeder.NewRunner(cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer runner.Close()

		if err := runner.Run(context.Background()); err != nil {
			return fmt.Errorf("seeder failed: %w", err)
		}
		output.Success("Seeded %d events", cfg.Count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVarP(&seedCount, "count", "c", 100, "Number of events to publish")
	seedCmd.Flags().DurationVar(&seedInterval, "interval", 0, "Delay between events")
	seedCmd.Flags().DurationVarP(&seedTimeSpread, "time-spread", "s", 0, "Backdate timestamps over this window (e.g. 24h)")
	seedCmd.Flags().StringVar(&seedControllerID, "controller-id", "sim-controller-1", "Controller id for the raw-event subject")
	seedCmd.Flags().StringVar(&seedEventNames, "events", "", "Comma-separated raw event names")
	seedCmd.Flags().Float64Var(&seedMalformedRatio, "malformed-ratio", 0, "Fraction of envelopes published with missing required fields")
	seedCmd.Flags().Float64Var(&seedUnknownRatio, "unknown-ratio", 0, "Fraction of envelopes published with an unknown event name")
}
