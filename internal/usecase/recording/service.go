package recording

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	appErrors "github.com/johnquangdev/capture-stitcher/errors"
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/domain/repositories"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/storage"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/transcoder"
	usecaseErrors "github.com/johnquangdev/capture-stitcher/internal/usecase/errors"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/timeline"
	"github.com/johnquangdev/capture-stitcher/pkg/config"
	"github.com/johnquangdev/capture-stitcher/pkg/jobcontext"
)

// JobTypeStitch is the jobcontext type of a processing run
const JobTypeStitch = "stitch"

// ObjectStore is the object storage the service reads captures from and writes artifacts to
type ObjectStore interface {
	DownloadPrefix(ctx context.Context, prefix, dir string) ([]string, error)
	UploadFile(ctx context.Context, key, filePath, contentType string) error
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Stitcher renders segments into a single video
type Stitcher interface {
	Stitch(ctx context.Context, dir string, segments []entities.Segment, subtitles, output string) (*transcoder.StitchResult, error)
}

// SpeakerResolver binds a speaker lookup to a meeting
type SpeakerResolver interface {
	Lookup(sessionID, meetingID string) timeline.SpeakerLookup
}

// Artifact is an uploaded output file
type Artifact struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url"`
}

// Service defines recording processing methods
type Service interface {
	Enqueue(ctx context.Context, meetingID, sessionID string) (*entities.ProcessingJob, error)
	GetJob(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error)
	ListJobs(ctx context.Context, meetingID string, limit, offset int) ([]*entities.ProcessingJob, int64, error)
	ListArtifacts(ctx context.Context, sessionID, meetingID string) ([]Artifact, error)
	Process(ctx context.Context, job *entities.ProcessingJob) error
	StartWorkerPool(ctx context.Context, workerCount int) error
	StopWorkerPool() error
}

type recordingService struct {
	jobRepo  repositories.JobRepository
	store    ObjectStore
	speakers SpeakerResolver
	engine   *timeline.Engine
	stitcher Stitcher
	cfg      *config.Config
	logger   *zap.Logger

	queue               chan uuid.UUID
	inflight            map[uuid.UUID]struct{}
	inflightMutex       sync.Mutex
	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
	sweepInterval       time.Duration
}

// NewService constructs a recording service. stitcher may be nil, in which case only
// subtitles and the timeline document are produced.
func NewService(
	jobRepo repositories.JobRepository,
	store ObjectStore,
	speakers SpeakerResolver,
	engine *timeline.Engine,
	stitcher Stitcher,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	if engine == nil {
		engine = timeline.NewEngine(logger)
	}
	queueSize := cfg.Worker.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	return &recordingService{
		jobRepo:       jobRepo,
		store:         store,
		speakers:      speakers,
		engine:        engine,
		stitcher:      stitcher,
		cfg:           cfg,
		logger:        logger,
		queue:         make(chan uuid.UUID, queueSize),
		inflight:      make(map[uuid.UUID]struct{}),
		sweepInterval: 30 * time.Second,
	}
}

// Enqueue creates a pending job for the meeting and hands it to the worker pool.
// An active job for the same meeting is returned instead of creating a second one.
func (s *recordingService) Enqueue(ctx context.Context, meetingID, sessionID string) (*entities.ProcessingJob, error) {
	if strings.TrimSpace(meetingID) == "" {
		return nil, entities.ErrInvalidMeeting
	}

	active, err := s.jobRepo.FindActiveByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active jobs: %w", err)
	}
	if active != nil {
		if s.logger != nil {
			s.logger.Info("⏭️ Meeting already queued",
				zap.String("meeting_id", meetingID),
				zap.String("job_id", active.ID.String()))
		}
		return active, nil
	}

	job := entities.NewProcessingJob(meetingID, sessionID)
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("📨 Processing job created",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", meetingID),
			zap.String("session_id", sessionID))
	}

	// a full queue leaves the job pending for the sweep
	if !s.dispatch(job.ID) && s.logger != nil {
		s.logger.Warn("⚠️ Job queue full, job left pending",
			zap.String("job_id", job.ID.String()))
	}

	return job, nil
}

// dispatch sends a job to the workers unless it is already queued or running
func (s *recordingService) dispatch(id uuid.UUID) bool {
	s.inflightMutex.Lock()
	defer s.inflightMutex.Unlock()

	if _, ok := s.inflight[id]; ok {
		return true
	}

	select {
	case s.queue <- id:
		s.inflight[id] = struct{}{}
		return true
	default:
		return false
	}
}

func (s *recordingService) release(id uuid.UUID) {
	s.inflightMutex.Lock()
	delete(s.inflight, id)
	s.inflightMutex.Unlock()
}

// GetJob returns a job by ID
func (s *recordingService) GetJob(ctx context.Context, id uuid.UUID) (*entities.ProcessingJob, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, entities.ErrJobNotFound
	}
	return job, nil
}

// ListJobs returns the jobs of a meeting, newest first
func (s *recordingService) ListJobs(ctx context.Context, meetingID string, limit, offset int) ([]*entities.ProcessingJob, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	jobs, total, err := s.jobRepo.ListByMeeting(ctx, meetingID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

// ListArtifacts returns presigned URLs for the uploaded artifacts of a meeting
func (s *recordingService) ListArtifacts(ctx context.Context, sessionID, meetingID string) ([]Artifact, error) {
	keys := NewOutputKeys(s.cfg.Paths.OutputPrefix, sessionID, meetingID)
	wanted := make(map[string]bool)
	for _, key := range keys.All() {
		wanted[key] = true
	}

	objects, err := s.store.List(ctx, strings.TrimSuffix(keys.Video, ".mp4"))
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	artifacts := make([]Artifact, 0, len(objects))
	for _, object := range objects {
		if !wanted[object.Key] {
			continue
		}
		url, err := s.store.GetFileURL(ctx, object.Key, s.cfg.Storage.PresignExpiry)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, Artifact{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			URL:          url,
		})
	}
	return artifacts, nil
}

// jobMetadata is stored in ProcessingJob.Metadata
type jobMetadata struct {
	Restarts        int                     `json:"restarts"`
	CorrectedEvents int                     `json:"corrected_events"`
	Dropped         int                     `json:"dropped_intervals"`
	Demoted         int                     `json:"demoted_intervals"`
	ParseFailures   []timeline.ParseFailure `json:"parse_failures,omitempty"`
	Transcoded      bool                    `json:"transcoded"`
	Attempt         int                     `json:"attempt"`
}

type upload struct {
	key         string
	file        string
	contentType string
}

// Process rebuilds the timeline of a captured meeting, renders the artifacts and uploads
// them. Nothing is uploaded unless every step before the upload succeeds.
func (s *recordingService) Process(ctx context.Context, job *entities.ProcessingJob) error {
	startTime := time.Now()

	workDir := filepath.Join(s.cfg.Paths.WorkDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	captureDir := filepath.Join(workDir, "captures")
	files, err := s.store.DownloadPrefix(ctx, CapturePrefix(s.cfg.Paths.CapturePrefix, job.MeetingID), captureDir)
	if err != nil {
		return appErrors.ErrStorageFailed("download captures", err)
	}
	if len(files) == 0 {
		return jobcontext.Permanent(fmt.Errorf("meeting %s: %w", job.MeetingID, entities.ErrNoCaptureChunks))
	}

	sources, err := LoadEventSources(filepath.Join(captureDir, EventsFolder))
	if err != nil {
		return err
	}

	var lookup timeline.SpeakerLookup
	if s.speakers != nil {
		lookup = s.speakers.Lookup(job.SessionID, job.MeetingID)
	}

	res, err := s.engine.Build(ctx, timeline.Input{
		Sources:  sources,
		AudioDir: filepath.Join(captureDir, AudioFolder),
		VideoDir: filepath.Join(captureDir, VideoFolder),
		Speakers: lookup,
	})
	if err != nil {
		if IsTimelineError(err) {
			return jobcontext.Permanent(appErrors.ErrTimelineInvalid(job.MeetingID, err))
		}
		return fmt.Errorf("failed to build timeline: %w", err)
	}

	outDir := filepath.Join(workDir, "output")
	local, err := WriteArtifacts(outDir, res)
	if err != nil {
		return err
	}

	if s.stitcher != nil {
		if len(res.Segments) == 0 {
			return jobcontext.Permanent(usecaseErrors.ErrNoAudioSegments)
		}
		local.Video = filepath.Join(outDir, job.MeetingID+".mp4")
		if _, err := s.stitcher.Stitch(ctx, filepath.Join(workDir, "stitch"), res.Segments, local.SubtitleSRT, local.Video); err != nil {
			return appErrors.ErrTranscoderFailed("stitch", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	keys := NewOutputKeys(s.cfg.Paths.OutputPrefix, job.SessionID, job.MeetingID)
	uploads := []upload{
		{keys.SubtitleSRT, local.SubtitleSRT, "application/x-subrip"},
		{keys.SubtitleVTT, local.SubtitleVTT, "text/vtt"},
		{keys.Timeline, local.Timeline, "application/json"},
	}
	if local.Video != "" {
		uploads = append(uploads, upload{keys.Video, local.Video, "video/mp4"})
	}
	for _, u := range uploads {
		if err := s.store.UploadFile(ctx, u.key, u.file, u.contentType); err != nil {
			return appErrors.ErrStorageFailed("upload "+u.key, err)
		}
	}

	s.applyResult(ctx, job, res, keys, local.Video != "")
	job.MarkAsCompleted()
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return appErrors.ErrDBQueryFailed("update job", err)
	}

	if s.logger != nil {
		s.logger.Info("✅ Meeting processed",
			zap.String("job_id", job.ID.String()),
			zap.String("meeting_id", job.MeetingID),
			zap.Int("segments", len(res.Segments)),
			zap.Int("cues", len(res.Cues)),
			zap.Bool("transcoded", local.Video != ""),
			zap.Duration("duration", time.Since(startTime)))
	}

	return nil
}

func (s *recordingService) applyResult(ctx context.Context, job *entities.ProcessingJob, res *timeline.Result, keys OutputKeys, transcoded bool) {
	start, end := res.Window.Start, res.Window.End
	job.RecordingStart = &start
	job.RecordingEnd = &end
	job.SegmentCount = len(res.Segments)
	job.OverlayCount = res.OverlayCount()
	job.CueCount = len(res.Cues)
	job.ParseFailures = len(res.ParseFailures)
	job.RetryCount = jobcontext.GetRetryAttempt(ctx)

	subtitleKey, timelineKey := keys.SubtitleSRT, keys.Timeline
	job.SubtitleKey = &subtitleKey
	job.TimelineKey = &timelineKey
	if transcoded {
		videoKey := keys.Video
		job.VideoKey = &videoKey
	}

	meta, err := json.Marshal(jobMetadata{
		Restarts:        res.Restarts,
		CorrectedEvents: res.CorrectedEvents,
		Dropped:         len(res.Dropped),
		Demoted:         len(res.Demoted),
		ParseFailures:   res.ParseFailures,
		Transcoded:      transcoded,
		Attempt:         job.RetryCount + 1,
	})
	if err == nil {
		job.Metadata = datatypes.JSON(meta)
	}
}

// FailureCode classifies a failed run for clients polling the job
func FailureCode(err error) string {
	var appErr appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code.String()
	}
	return appErrors.ErrProcessingFailed(err).Code.String()
}

// IsTimelineError reports whether err means the capture itself cannot be rebuilt
func IsTimelineError(err error) bool {
	return errors.Is(err, entities.ErrNoEventSources) ||
		errors.Is(err, entities.ErrMissingCaptureStart) ||
		errors.Is(err, entities.ErrMissingCaptureEnd) ||
		errors.Is(err, entities.ErrInvalidWindow)
}
