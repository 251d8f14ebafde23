package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adam-platform/instrument-bridge/cli/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ibctl",
	Short: "Instrument bridge CLI",
	Long: `ibctl is the command-line interface for the instrument bridge stack.

Drive instrument controllers (actions, activities), inspect the event
bridge's dead-letter queue, and publish synthetic events from your
terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ibctl/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "default", "profile to use")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.Default()
	}
}

// activeProfile resolves the profile selected by the --profile flag.
func activeProfile(cmd *cobra.Command) *config.Profile {
	if name, _ := cmd.Flags().GetString("profile"); name != "" {
		cfg.CurrentProfile = name
	}
	return cfg.Active()
}

// wantJSON reports whether --output json was requested.
func wantJSON(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("output")
	return format == "json"
}
