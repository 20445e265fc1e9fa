package entities

import "time"

// AttendeeJoinedEventType is the directory event that carries an attendee's external user ID
const AttendeeJoinedEventType = "chime:AttendeeJoined"

// MeetingEvent is a row of the meeting events directory table
type MeetingEvent struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID      string    `json:"session_id" gorm:"type:varchar(255);not null;index:idx_meeting_events_lookup"`
	MeetingID      string    `json:"meeting_id" gorm:"type:varchar(255);not null;index:idx_meeting_events_lookup"`
	EventType      string    `json:"event_type" gorm:"type:varchar(100);not null;index:idx_meeting_events_lookup"`
	AttendeeID     string    `json:"attendee_id" gorm:"type:varchar(255)"`
	ExternalUserID string    `json:"external_user_id" gorm:"type:varchar(255)"`
	Timestamp      time.Time `json:"timestamp" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MeetingEvent) TableName() string {
	return "meeting_events"
}
