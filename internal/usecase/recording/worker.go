package recording

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/pkg/jobcontext"
)

// sweepBatch bounds how many pending jobs one sweep dispatches
const sweepBatch = 10

// StartWorkerPool starts the processing workers and the pending job sweep
func (s *recordingService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}
	if workerCount < 1 {
		workerCount = 1
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	if s.logger != nil {
		s.logger.Info("🚀 Starting recording worker pool",
			zap.Int("worker_count", workerCount),
			zap.Int("queue_size", cap(s.queue)))
	}

	// jobs left processing by a previous run go back to pending
	s.recoverInterrupted(ctx)

	for i := range workerCount {
		s.workerWg.Add(1)
		go s.worker(ctx, i)
	}

	s.workerWg.Add(1)
	go s.pendingJobWorker(ctx)

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines
func (s *recordingService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	if s.logger != nil {
		s.logger.Info("🛑 Stopping recording worker pool...")
	}

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	if s.logger != nil {
		s.logger.Info("✅ Recording worker pool stopped")
	}

	return nil
}

func (s *recordingService) worker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	if s.logger != nil {
		s.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-s.workerStopChan:
			if s.logger != nil {
				s.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			}
			return

		case <-parentCtx.Done():
			return

		case id := <-s.queue:
			s.runJob(parentCtx, workerID, id)
			s.release(id)
		}
	}
}

func (s *recordingService) runJob(parentCtx context.Context, workerID int, id uuid.UUID) {
	job, err := s.jobRepo.FindByID(parentCtx, id)
	if err != nil || job == nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to load queued job",
				zap.String("job_id", id.String()),
				zap.Error(err))
		}
		return
	}
	if job.Status != entities.JobStatusPending {
		return
	}

	job.MarkAsProcessing()
	if err := s.jobRepo.Update(parentCtx, job); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to claim job", zap.String("job_id", id.String()), zap.Error(err))
		}
		return
	}

	if s.logger != nil {
		s.logger.Info("👷 Worker claimed job",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", job.MeetingID))
	}

	jobCtx, cancel := jobcontext.JobBegin(parentCtx, job.ID, JobTypeStitch, workerID, jobcontext.Options{
		Timeout:    s.cfg.Worker.JobTimeout,
		MaxRetries: s.cfg.Worker.MaxRetries,
	})
	err = jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		return s.Process(ctx, job)
	})
	cancel()

	if err == nil {
		return
	}

	if s.logger != nil {
		s.logger.Error("❌ Job failed",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", job.MeetingID),
			zap.Error(err))
	}

	job.MarkAsFailed(FailureCode(err), err.Error())
	// the parent context may be gone during shutdown
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer saveCancel()
	if err := s.jobRepo.Update(saveCtx, job); err != nil && s.logger != nil {
		s.logger.Error("❌ Failed to mark job as failed", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}

// pendingJobWorker dispatches pending jobs that did not fit into the queue
func (s *recordingService) pendingJobWorker(parentCtx context.Context) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.workerStopChan:
			return

		case <-parentCtx.Done():
			return

		case <-ticker.C:
			jobs, err := s.jobRepo.ListByStatus(parentCtx, entities.JobStatusPending, sweepBatch)
			if err != nil {
				if s.logger != nil {
					s.logger.Error("❌ Failed to poll pending jobs", zap.Error(err))
				}
				continue
			}

			for _, job := range jobs {
				if !s.dispatch(job.ID) {
					break
				}
			}
		}
	}
}

func (s *recordingService) recoverInterrupted(ctx context.Context) {
	jobs, err := s.jobRepo.ListByStatus(ctx, entities.JobStatusProcessing, 100)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to list interrupted jobs", zap.Error(err))
		}
		return
	}

	for _, job := range jobs {
		job.Status = entities.JobStatusPending
		job.ProcessingStartedAt = nil
		if err := s.jobRepo.Update(ctx, job); err != nil {
			continue
		}
		if s.logger != nil {
			s.logger.Warn("🧹 Requeued interrupted job", zap.String("job_id", job.ID.String()))
		}
		s.dispatch(job.ID)
	}
}
