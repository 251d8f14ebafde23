package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adam-platform/instrument-bridge/cli/internal/client"
	"github.com/adam-platform/instrument-bridge/cli/pkg/output"
	"github.com/adam-platform/instrument-bridge/common/contract"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Instrument action commands",
	Long:  "List and perform actions on an instrument controller",
}

var actionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewControllerClient(activeProfile(cmd).ControllerURL)
		names, err := c.ListActions()
		if err != nil {
			return fmt.Errorf("failed to list actions: %w", err)
		}

		if wantJSON(cmd) {
			return output.JSON(map[string]interface{}{"actionNames": names})
		}
		table := output.NewTable([]string{"ACTION"})
		for _, name := range names {
			table.AddRow([]string{name})
		}
		table.Render()
		return nil
	},
}

var actionsPerformCmd = &cobra.Command{
	Use:   "perform <action-name>",
	Short: "Perform an action",
	Example: `  ibctl actions perform HOME
  ibctl actions perform MOVE --option axis=x --option position=12.5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawOpts, _ := cmd.Flags().GetStringArray("option")
		opts, err := parseKeyVals(rawOpts)
		if err != nil {
			return err
		}

		c := client.NewControllerClient(activeProfile(cmd).ControllerURL)
		reply, err := c.PerformAction(contract.PerformActionCmd{
			ActionName:    args[0],
			ActionOptions: opts,
		})
		if err != nil {
			return fmt.Errorf("failed to perform action: %w", err)
		}

		if wantJSON(cmd) {
			return output.JSON(reply)
		}
		if reply.Accepted {
			output.Success("Action %s accepted", args[0])
		} else {
			output.Error("Action %s rejected", args[0])
		}
		return nil
	},
}

// parseKeyVals turns repeated key=value flags into contract key/value pairs.
func parseKeyVals(raw []string) ([]contract.KeyVal, error) {
	var kvs []contract.KeyVal
	for _, item := range raw {
		key, val, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", item)
		}
		kvs = append(kvs, contract.KeyVal{Key: key, Value: val})
	}
	return kvs, nil
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.AddCommand(actionsListCmd)
	actionsCmd.AddCommand(actionsPerformCmd)

	actionsPerformCmd.Flags().StringArray("option", nil, "Action option as key=value (repeatable)")
}
