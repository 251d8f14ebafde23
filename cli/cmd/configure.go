package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adam-platform/instrument-bridge/cli/internal/config"
	"github.com/adam-platform/instrument-bridge/cli/pkg/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration profiles",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if wantJSON(cmd) {
			return output.JSON(cfg)
		}
		table := output.NewTable([]string{"PROFILE", "CONTROLLER", "BRIDGE", "NATS"})
		for name, p := range cfg.Profiles {
			label := name
			if name == cfg.CurrentProfile {
				label = name + " *"
			}
			table.AddRow([]string{label, p.ControllerURL, p.BridgeURL, p.NATSURL})
		}
		table.Render()
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set profile values and save the config file",
	Example: `  ibctl config set --controller-url http://lab-host:8095
  ibctl config set --profile staging --nats-url nats://staging:4222`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("profile")
		if cfg.Profiles == nil {
			cfg.Profiles = map[string]*config.Profile{}
		}
		p, ok := cfg.Profiles[name]
		if !ok {
			p = &config.Profile{}
			cfg.Profiles[name] = p
		}

		if v, _ := cmd.Flags().GetString("controller-url"); v != "" {
			p.ControllerURL = v
		}
		if v, _ := cmd.Flags().GetString("bridge-url"); v != "" {
			p.BridgeURL = v
		}
		if v, _ := cmd.Flags().GetString("nats-url"); v != "" {
			p.NATSURL = v
		}
		if current, _ := cmd.Flags().GetBool("use"); current {
			cfg.CurrentProfile = name
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		output.Success("Profile %s saved", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)

	configSetCmd.Flags().String("controller-url", "", "Controller base URL")
	configSetCmd.Flags().String("bridge-url", "", "Bridge base URL")
	configSetCmd.Flags().String("nats-url", "", "NATS server URL")
	configSetCmd.Flags().Bool("use", false, "Make this the current profile")
}
