package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/domain/repositories"
)

// jobRepository implements the JobRepository interface
type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new processing job repository
func NewJobRepository(db *gorm.DB) repositories.JobRepository {
	return &jobRepository{db: db}
}

// Create creates a new job
func (r *jobRepository) Create(ctx context.Context, job *entities.ProcessingJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID retrieves a job by its ID
func (r *jobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error) {
	var job entities.ProcessingJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// Update saves every field of an existing job
func (r *jobRepository) Update(ctx context.Context, job *entities.ProcessingJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// ListByMeeting retrieves the jobs of a meeting, newest first
func (r *jobRepository) ListByMeeting(ctx context.Context, meetingID string, limit, offset int) ([]*entities.ProcessingJob, int64, error) {
	var (
		jobs  []*entities.ProcessingJob
		total int64
	)

	query := r.db.WithContext(ctx).Model(&entities.ProcessingJob{})
	if meetingID != "" {
		query = query.Where("meeting_id = ?", meetingID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// FindActiveByMeeting retrieves a pending or processing job of a meeting
func (r *jobRepository) FindActiveByMeeting(ctx context.Context, meetingID string) (*entities.ProcessingJob, error) {
	var job entities.ProcessingJob
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Where("status IN ?", []entities.JobStatus{entities.JobStatusPending, entities.JobStatusProcessing}).
		Order("created_at DESC").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// ListByStatus retrieves jobs in the given status, oldest first
func (r *jobRepository) ListByStatus(ctx context.Context, status entities.JobStatus, limit int) ([]*entities.ProcessingJob, error) {
	var jobs []*entities.ProcessingJob
	query := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
