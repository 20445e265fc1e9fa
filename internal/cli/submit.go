package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/queue"
)

// NewSubmitCmd publishes a stitch task to the Kafka topic
func NewSubmitCmd(deps *Dependencies) *cobra.Command {
	task := queue.Task{Action: queue.ActionStitch}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Queue a meeting for processing through Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := task.Validate(); err != nil {
				return err
			}

			producer, err := queue.NewKafkaProducer(deps.Config.Kafka)
			if err != nil {
				return err
			}
			defer producer.Close()

			if err := producer.Publish(cmd.Context(), task); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "📨 Queued %s on %s\n", task.MeetingID, deps.Config.Kafka.Topic)
			return nil
		},
	}

	cmd.Flags().StringVar(&task.MeetingID, "meeting", "", "meeting ID")
	cmd.Flags().StringVar(&task.SessionID, "session", "", "session ID")
	_ = cmd.MarkFlagRequired("meeting")

	return cmd
}
