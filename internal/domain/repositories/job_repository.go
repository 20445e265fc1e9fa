package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// JobRepository defines the interface for processing job data access
type JobRepository interface {
	// Create creates a new job
	Create(ctx context.Context, job *entities.ProcessingJob) error

	// FindByID retrieves a job by its ID, nil when it does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error)

	// Update saves every field of an existing job
	Update(ctx context.Context, job *entities.ProcessingJob) error

	// ListByMeeting retrieves the jobs of a meeting, newest first
	ListByMeeting(ctx context.Context, meetingID string, limit, offset int) ([]*entities.ProcessingJob, int64, error)

	// FindActiveByMeeting retrieves a pending or processing job of a meeting, nil when none
	FindActiveByMeeting(ctx context.Context, meetingID string) (*entities.ProcessingJob, error)

	// ListByStatus retrieves jobs in the given status, oldest first
	ListByStatus(ctx context.Context, status entities.JobStatus, limit int) ([]*entities.ProcessingJob, error)
}
