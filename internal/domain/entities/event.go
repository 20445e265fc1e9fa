package entities

import "time"

// EventType is the EventType field of a capture event record
type EventType string

const (
	EventTypeCaptureStarted      EventType = "CaptureStarted"
	EventTypeCaptureEnded        EventType = "CaptureEnded"
	EventTypeActiveSpeaker       EventType = "ActiveSpeaker"
	EventTypeAttendeeVideoJoined EventType = "AttendeeVideoJoined"
	EventTypeAttendeeVideoLeft   EventType = "AttendeeVideoLeft"
)

// MediaModality classifies the media carried by a video joined/left event
type MediaModality string

const (
	// MediaModalityContent marks a screen share
	MediaModalityContent MediaModality = "ContentShare"
)

// Event is a single parsed capture event. Events are never mutated after parsing.
type Event struct {
	Type          EventType     `json:"type"`
	Timestamp     time.Time     `json:"timestamp"`
	AttendeeID    string        `json:"attendee_id,omitempty"`
	MediaModality MediaModality `json:"media_modality,omitempty"`

	// Source is the index of the event-log chunk the event was read from,
	// Index its position inside that chunk.
	Source int `json:"source"`
	Index  int `json:"index"`
}

// IsContent reports whether the event refers to a screen share
func (e Event) IsContent() bool {
	return e.MediaModality == MediaModalityContent
}

// IsShareStarted reports whether the event opens a screen share
func (e Event) IsShareStarted() bool {
	return e.Type == EventTypeAttendeeVideoJoined && e.IsContent()
}

// IsShareStopped reports whether the event closes a screen share
func (e Event) IsShareStopped() bool {
	return e.Type == EventTypeAttendeeVideoLeft && e.IsContent()
}
