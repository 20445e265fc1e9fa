package recording

import (
	"encoding/json"
	"time"
)

// JobResponse represents a processing job
type JobResponse struct {
	ID              string          `json:"id"`
	MeetingID       string          `json:"meeting_id"`
	SessionID       string          `json:"session_id,omitempty"`
	Status          string          `json:"status"`
	RecordingStart  *time.Time      `json:"recording_start,omitempty"`
	RecordingEnd    *time.Time      `json:"recording_end,omitempty"`
	DurationSeconds float64         `json:"duration_seconds,omitempty"`
	SegmentCount    int             `json:"segment_count"`
	OverlayCount    int             `json:"overlay_count"`
	CueCount        int             `json:"cue_count"`
	ParseFailures   int             `json:"parse_failures"`
	VideoKey        *string         `json:"video_key,omitempty"`
	SubtitleKey     *string         `json:"subtitle_key,omitempty"`
	TimelineKey     *string         `json:"timeline_key,omitempty"`
	RetryCount      int             `json:"retry_count"`
	Error           *string         `json:"error,omitempty"`
	ErrorCode       *string         `json:"error_code,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty" swaggertype:"object"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ArtifactResponse represents a downloadable output file
type ArtifactResponse struct {
	Key          string    `json:"key"`
	Kind         string    `json:"kind"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url"`
}
