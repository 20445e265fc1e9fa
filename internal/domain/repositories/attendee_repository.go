package repositories

import (
	"context"
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// AttendeeRepository reads the meeting events directory
type AttendeeRepository interface {
	// FindJoinedAttendees returns attendee ID -> external user ID for every
	// chime:AttendeeJoined row of a meeting
	FindJoinedAttendees(ctx context.Context, sessionID, meetingID string) (map[string]string, error)

	// SaveEvents stores directory rows
	SaveEvents(ctx context.Context, events []*entities.MeetingEvent) error
}

// SpeakerCache caches resolved speaker directories
type SpeakerCache interface {
	GetSpeakers(ctx context.Context, key string) (entities.SpeakerDirectory, bool, error)
	SetSpeakers(ctx context.Context, key string, dir entities.SpeakerDirectory, ttl time.Duration) error
}
