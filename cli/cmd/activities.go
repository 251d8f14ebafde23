package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adam-platform/instrument-bridge/cli/internal/client"
	"github.com/adam-platform/instrument-bridge/cli/pkg/output"
	"github.com/adam-platform/instrument-bridge/common/contract"
)

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Instrument activity commands",
	Long:  "Start, cancel, and inspect long-running activities on an instrument controller",
}

var activitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewControllerClient(activeProfile(cmd).ControllerURL)
		names, err := c.ListActivities()
		if err != nil {
			return fmt.Errorf("failed to list activities: %w", err)
		}

		if wantJSON(cmd) {
			return output.JSON(map[string]interface{}{"activityNames": names})
		}
		table := output.NewTable([]string{"ACTIVITY"})
		for _, name := range names {
			table.AddRow([]string{name})
		}
		table.Render()
		return nil
	},
}

var activitiesStartCmd = &cobra.Command{
	Use:   "start <activity-name>",
	Short: "Start an activity",
	Example: `  ibctl activities start SCAN
  ibctl activities start BUILD --deadline 2026-09-01T12:00:00Z --option layers=40`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deadline, _ := cmd.Flags().GetString("deadline")
		rawOpts, _ := cmd.Flags().GetStringArray("option")
		opts, err := parseKeyVals(rawOpts)
		if err != nil {
			return err
		}

		c := client.NewControllerClient(activeProfile(cmd).ControllerURL)
		reply, err := c.StartActivity(contract.StartActivityRequest{
			ActivityName:     args[0],
			ActivityOptions:  opts,
			ActivityDeadline: deadline,
		})
		if err != nil {
			return fmt.Errorf("failed to start activity: %w", err)
		}

		if wantJSON(cmd) {
			return output.JSON(reply)
		}
		if reply.ErrorMsg != "" {
			output.Error("Activity rejected: %s", reply.ErrorMsg)
			return nil
		}
		output.Success("Activity started: %s", reply.ActivityID)
		return nil
	},
}

var activitiesCancelCmd = &cobra.Command{
	Use:   "cancel <activity-id>",
	Short: "Cancel a running activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")

		c := client.NewControllerClient(activeProfile(cmd).ControllerURL)
		reply, err := c.CancelActivity(contract.CancelActivityCmd{
			ActivityID: args[0],
			Reason:     reason,
		})
		if err != nil {
			return fmt.Errorf("failed to cancel activity: %w", err)
		}

		if wantJSON(cmd) {
			return output.JSON(reply)
		}
		switch {
		case reply.Accepted && reply.Confirmed:
			output.Success("Activity %s canceled", args[0])
		case reply.Accepted:
			output.Warn("Cancellation accepted for %s, awaiting confirmation", args[0])
		default:
			output.Error("Cancellation rejected: %s", reply.ErrorMsg)
		}
		return nil
	},
}

var activitiesStatusCmd = &cobra.Command{
	Use:   "status <activity-id>",
	Short: "Show the status of an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewControllerClient(activeProfile(cmd).ControllerURL)
		reply, err := c.ActivityStatus(args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch status: %w", err)
		}

		if wantJSON(cmd) {
			return output.JSON(reply)
		}
		table := output.NewTable([]string{"FIELD", "VALUE"})
		table.AddRow([]string{"status", reply.ActivityStatus})
		table.AddRow([]string{"timeBegin", reply.TimeBegin})
		table.AddRow([]string{"timeEnd", reply.TimeEnd})
		if reply.StatusMsg != "" {
			table.AddRow([]string{"statusMsg", reply.StatusMsg})
		}
		if reply.ErrorMsg != "" {
			table.AddRow([]string{"errorMsg", reply.ErrorMsg})
		}
		table.Render()
		return nil
	},
}

var activitiesDataCmd = &cobra.Command{
	Use:   "data <activity-id>",
	Short: "List the data products of a completed activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewControllerClient(activeProfile(cmd).ControllerURL)
		reply, err := c.ActivityData(args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch data products: %w", err)
		}

		if wantJSON(cmd) {
			return output.JSON(reply)
		}
		if reply.ErrorMsg != "" {
			output.Warn("%s", reply.ErrorMsg)
			return nil
		}
		table := output.NewTable([]string{"PRODUCT"})
		for _, p := range reply.Products {
			table.AddRow([]string{p})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(activitiesCmd)
	activitiesCmd.AddCommand(activitiesListCmd)
	activitiesCmd.AddCommand(activitiesStartCmd)
	activitiesCmd.AddCommand(activitiesCancelCmd)
	activitiesCmd.AddCommand(activitiesStatusCmd)
	activitiesCmd.AddCommand(activitiesDataCmd)

	activitiesStartCmd.Flags().String("deadline", "", "Activity deadline as an RFC3339 timestamp")
	activitiesStartCmd.Flags().StringArray("option", nil, "Activity option as key=value (repeatable)")
	activitiesCancelCmd.Flags().String("reason", "operator request", "Cancellation reason")
}
