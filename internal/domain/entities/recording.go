package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobStatus represents the status of a stitch job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// ProcessingJob tracks one reconstruction + stitch run of a captured meeting
type ProcessingJob struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID string    `json:"meeting_id" gorm:"type:varchar(255);not null;index"`
	SessionID string    `json:"session_id" gorm:"type:varchar(255);index"`
	Status    JobStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`

	// Timeline results
	RecordingStart *time.Time `json:"recording_start,omitempty"`
	RecordingEnd   *time.Time `json:"recording_end,omitempty"`
	SegmentCount   int        `json:"segment_count" gorm:"default:0"`
	OverlayCount   int        `json:"overlay_count" gorm:"default:0"`
	CueCount       int        `json:"cue_count" gorm:"default:0"`
	ParseFailures  int        `json:"parse_failures" gorm:"default:0"`

	// Artifacts
	VideoKey    *string `json:"video_key,omitempty" gorm:"type:text"`
	SubtitleKey *string `json:"subtitle_key,omitempty" gorm:"type:text"`
	TimelineKey *string `json:"timeline_key,omitempty" gorm:"type:text"`

	RetryCount          int            `json:"retry_count" gorm:"default:0"`
	ProcessingError     *string        `json:"processing_error,omitempty" gorm:"type:text"`
	ErrorCode           *string        `json:"error_code,omitempty" gorm:"type:varchar(64)"`
	ProcessingStartedAt *time.Time     `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time     `json:"completed_at,omitempty"`
	Metadata            datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb;default:'{}'"`
	CreatedAt           time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ProcessingJob) TableName() string {
	return "processing_jobs"
}

// NewProcessingJob creates a pending job for a meeting
func NewProcessingJob(meetingID, sessionID string) *ProcessingJob {
	return &ProcessingJob{
		ID:        uuid.New(),
		MeetingID: meetingID,
		SessionID: sessionID,
		Status:    JobStatusPending,
		Metadata:  datatypes.JSON([]byte(`{}`)),
	}
}

// IsCompleted checks if the job is completed
func (j *ProcessingJob) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}

// IsFailed checks if the job failed
func (j *ProcessingJob) IsFailed() bool {
	return j.Status == JobStatusFailed
}

// MarkAsProcessing marks the job as processing
func (j *ProcessingJob) MarkAsProcessing() {
	j.Status = JobStatusProcessing
	now := time.Now()
	j.ProcessingStartedAt = &now
	j.ProcessingError = nil
	j.ErrorCode = nil
}

// MarkAsCompleted marks the job as completed
func (j *ProcessingJob) MarkAsCompleted() {
	j.Status = JobStatusCompleted
	now := time.Now()
	j.CompletedAt = &now
}

// MarkAsFailed marks the job as failed
func (j *ProcessingJob) MarkAsFailed(code, errorMsg string) {
	j.Status = JobStatusFailed
	j.ProcessingError = &errorMsg
	j.ErrorCode = &code
	now := time.Now()
	j.CompletedAt = &now
}
