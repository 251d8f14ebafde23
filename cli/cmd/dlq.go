package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/adam-platform/instrument-bridge/cli/pkg/output"
	"github.com/adam-platform/instrument-bridge/common/contract"
	"github.com/adam-platform/instrument-bridge/common/messaging"
	"github.com/adam-platform/instrument-bridge/common/messaging/nats"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Dead-letter queue commands",
	Long:  "Inspect and manage the event bridge's dead-letter queue",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dead-letter envelopes",
	Example: `  ibctl dlq list
  ibctl dlq list --limit 10 --code SCHEMA_VALIDATION_ERROR`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		code, _ := cmd.Flags().GetString("code")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		stream, closeFn, err := dlqStream(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		filter := messaging.SubjectBridgeDLQ + ".>"
		if code != "" {
			filter = messaging.DLQSubject(strings.ToLower(code))
		}
		consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
			FilterSubject: filter,
			AckPolicy:     jetstream.AckNonePolicy,
			DeliverPolicy: jetstream.DeliverAllPolicy,
			MaxDeliver:    1,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}

		msgs, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
		if err != nil {
			return fmt.Errorf("failed to fetch messages: %w", err)
		}

		var envelopes []contract.DeadLetterEnvelope
		for msg := range msgs.Messages() {
			var envelope contract.DeadLetterEnvelope
			if err := json.Unmarshal(msg.Data(), &envelope); err != nil {
				output.Warn("Skipping unparseable DLQ message: %v", err)
				continue
			}
			envelopes = append(envelopes, envelope)
		}

		if wantJSON(cmd) {
			return output.JSON(envelopes)
		}
		if len(envelopes) == 0 {
			output.Info("Dead-letter queue is empty")
			return nil
		}
		table := output.NewTable([]string{"RECEIVED", "CODE", "TOPIC", "MESSAGE"})
		for _, envelope := range envelopes {
			table.AddRow([]string{
				envelope.ReceivedAt,
				envelope.Error.Code,
				envelope.Source.SourceTopic,
				envelope.Error.Message,
			})
		}
		table.Render()
		return nil
	},
}

var dlqStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dead-letter queue statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		stream, closeFn, err := dlqStream(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}

		stats := map[string]interface{}{
			"stream":         info.Config.Name,
			"total_messages": info.State.Msgs,
			"total_bytes":    info.State.Bytes,
			"first_seq":      info.State.FirstSeq,
			"last_seq":       info.State.LastSeq,
			"consumer_count": info.State.Consumers,
		}
		if wantJSON(cmd) {
			return output.JSON(stats)
		}
		table := output.NewTable([]string{"FIELD", "VALUE"})
		table.AddRow([]string{"stream", info.Config.Name})
		table.AddRow([]string{"messages", fmt.Sprintf("%d", info.State.Msgs)})
		table.AddRow([]string{"bytes", fmt.Sprintf("%d", info.State.Bytes)})
		table.AddRow([]string{"first_seq", fmt.Sprintf("%d", info.State.FirstSeq)})
		table.AddRow([]string{"last_seq", fmt.Sprintf("%d", info.State.LastSeq)})
		table.AddRow([]string{"consumers", fmt.Sprintf("%d", info.State.Consumers)})
		table.Render()
		return nil
	},
}

var dlqPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove all envelopes from the dead-letter queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirmed, _ := cmd.Flags().GetBool("yes")
		if !confirmed {
			return fmt.Errorf("refusing to purge without --yes")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		stream, closeFn, err := dlqStream(ctx, cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := stream.Purge(ctx); err != nil {
			return fmt.Errorf("failed to purge stream: %w", err)
		}
		output.Success("Dead-letter queue purged")
		return nil
	},
}

// dlqStream connects to NATS and returns the DLQ stream plus a close func.
func dlqStream(ctx context.Context, cmd *cobra.Command) (jetstream.Stream, func(), error) {
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = activeProfile(cmd).NATSURL
	natsCfg.Name = "ibctl"

	js, err := nats.NewJetStreamClient(natsCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, nats.BridgeDLQStream)
	if err != nil {
		js.Close()
		return nil, nil, fmt.Errorf("failed to open DLQ stream: %w", err)
	}

	return stream, func() { js.Close() }, nil
}

func init() {
	rootCmd.AddCommand(dlqCmd)
	dlqCmd.AddCommand(dlqListCmd)
	dlqCmd.AddCommand(dlqStatsCmd)
	dlqCmd.AddCommand(dlqPurgeCmd)

	dlqListCmd.Flags().Int("limit", 100, "Maximum number of envelopes to fetch")
	dlqListCmd.Flags().String("code", "", "Filter by error code (e.g. SCHEMA_VALIDATION_ERROR)")
	dlqPurgeCmd.Flags().Bool("yes", false, "Confirm the purge")
}
