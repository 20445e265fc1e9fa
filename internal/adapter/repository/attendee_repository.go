package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/domain/repositories"
)

// attendeeRepository implements the AttendeeRepository interface
type attendeeRepository struct {
	db *gorm.DB
}

// NewAttendeeRepository creates a new meeting events directory repository
func NewAttendeeRepository(db *gorm.DB) repositories.AttendeeRepository {
	return &attendeeRepository{db: db}
}

// FindJoinedAttendees returns attendee ID -> external user ID for a meeting
func (r *attendeeRepository) FindJoinedAttendees(ctx context.Context, sessionID, meetingID string) (map[string]string, error) {
	var rows []entities.MeetingEvent
	err := r.db.WithContext(ctx).
		Select("attendee_id", "external_user_id").
		Where("session_id = ? AND meeting_id = ? AND event_type = ?", sessionID, meetingID, entities.AttendeeJoinedEventType).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	attendees := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.AttendeeID == "" {
			continue
		}
		// later joins of the same attendee win
		attendees[row.AttendeeID] = row.ExternalUserID
	}
	return attendees, nil
}

// SaveEvents stores directory rows
func (r *attendeeRepository) SaveEvents(ctx context.Context, events []*entities.MeetingEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(events, 100).Error
}
