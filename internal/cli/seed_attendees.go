package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/internal/adapter/repository"
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/database"
	pkgvalidator "github.com/johnquangdev/capture-stitcher/pkg/validator"
)

// attendeeRow is one line of a seed file
type attendeeRow struct {
	AttendeeID     string `json:"attendee_id" validate:"required"`
	ExternalUserID string `json:"external_user_id" validate:"required"`
}

// NewSeedAttendeesCmd loads attendee join events into the meeting events table
func NewSeedAttendeesCmd(deps *Dependencies) *cobra.Command {
	var (
		meetingID string
		sessionID string
		file      string
	)

	cmd := &cobra.Command{
		Use:   "seed-attendees",
		Short: "Insert attendee join events used to name speakers",
		Example: `  stitcher seed-attendees --meeting m1 --session s1 --file attendees.json
  attendees.json: [{"attendee_id": "a1", "external_user_id": "u1:Alice:web"}]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer in.Close()

			events, err := readAttendees(in, sessionID, meetingID, time.Now().UTC())
			if err != nil {
				return err
			}

			deps.Logger.Info("📦 Connecting to database...")
			db, err := database.NewPostgresDB(deps.Config, deps.Logger)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			if err := repository.NewAttendeeRepository(db).SaveEvents(cmd.Context(), events); err != nil {
				return err
			}

			deps.Logger.Info("✅ Attendees seeded",
				zap.String("meeting_id", meetingID),
				zap.String("session_id", sessionID),
				zap.Int("count", len(events)))
			for _, event := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "🟢 %s → %s\n",
					event.AttendeeID, entities.DisplayNameFromExternalUserID(event.ExternalUserID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&meetingID, "meeting", "", "meeting ID")
	cmd.Flags().StringVar(&sessionID, "session", "", "session ID")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array of {attendee_id, external_user_id}")
	_ = cmd.MarkFlagRequired("meeting")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readAttendees decodes a seed file into join events stamped at joinedAt
func readAttendees(r io.Reader, sessionID, meetingID string, joinedAt time.Time) ([]*entities.MeetingEvent, error) {
	if !pkgvalidator.IsKeySegment(meetingID) || (sessionID != "" && !pkgvalidator.IsKeySegment(sessionID)) {
		return nil, entities.ErrInvalidMeeting
	}

	var rows []attendeeRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	v := pkgvalidator.New()
	events := make([]*entities.MeetingEvent, 0, len(rows))
	for i, row := range rows {
		if err := v.Validate(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		events = append(events, &entities.MeetingEvent{
			SessionID:      sessionID,
			MeetingID:      meetingID,
			EventType:      entities.AttendeeJoinedEventType,
			AttendeeID:     row.AttendeeID,
			ExternalUserID: row.ExternalUserID,
			Timestamp:      joinedAt,
		})
	}
	return events, nil
}
