package recording

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/storage"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/transcoder"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/timeline"
	"github.com/johnquangdev/capture-stitcher/pkg/config"
	"github.com/johnquangdev/capture-stitcher/pkg/jobcontext"
)

var t0 = time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC)

type memoryJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]entities.ProcessingJob
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{jobs: make(map[uuid.UUID]entities.ProcessingJob)}
}

func (m *memoryJobs) Create(_ context.Context, job *entities.ProcessingJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *memoryJobs) FindByID(_ context.Context, id uuid.UUID) (*entities.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (m *memoryJobs) Update(ctx context.Context, job *entities.ProcessingJob) error {
	return m.Create(ctx, job)
}

func (m *memoryJobs) ListByMeeting(_ context.Context, meetingID string, limit, offset int) ([]*entities.ProcessingJob, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.ProcessingJob
	for _, job := range m.jobs {
		if job.MeetingID == meetingID {
			out = append(out, &job)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryJobs) FindActiveByMeeting(_ context.Context, meetingID string) (*entities.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.MeetingID == meetingID && (job.Status == entities.JobStatusPending || job.Status == entities.JobStatusProcessing) {
			return &job, nil
		}
	}
	return nil, nil
}

func (m *memoryJobs) ListByStatus(_ context.Context, status entities.JobStatus, limit int) ([]*entities.ProcessingJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.ProcessingJob
	for _, job := range m.jobs {
		if job.Status == status && len(out) < limit {
			out = append(out, &job)
		}
	}
	return out, nil
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads []string
}

func (m *memoryStore) DownloadPrefix(_ context.Context, prefix, dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var paths []string
	for key, data := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		dest, err := storage.LocalPath(dir, prefix, key)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

func (m *memoryStore) UploadFile(_ context.Context, key, filePath, _ string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.uploads = append(m.uploads, key)
	return nil
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) GetFileURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

type staticResolver entities.SpeakerDirectory

func (r staticResolver) Lookup(string, string) timeline.SpeakerLookup {
	return timeline.StaticSpeakers(entities.SpeakerDirectory(r))
}

type fakeStitcher struct {
	segments int
	err      error
}

func (f *fakeStitcher) Stitch(_ context.Context, _ string, segments []entities.Segment, _, output string) (*transcoder.StitchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.segments = len(segments)
	if err := os.WriteFile(output, []byte("mp4"), 0o644); err != nil {
		return nil, err
	}
	return &transcoder.StitchResult{Output: output}, nil
}

func record(offset time.Duration, typ entities.EventType, attendee string) string {
	params := map[string]string{}
	if attendee != "" {
		params["AttendeeId"] = attendee
	}
	b, _ := json.Marshal(map[string]any{
		"Timestamp":       t0.Add(offset).Format(time.RFC3339Nano),
		"EventType":       string(typ),
		"EventParameters": params,
	})
	return string(b)
}

func chunkKey(folder string, offset time.Duration) string {
	ts := t0.Add(offset)
	return "captures/m1/" + folder + "/" + ts.Format("2006-01-02-15-04-05") + "-" + ts.Format(".000")[1:] + ".mp4"
}

func captureObjects(withEnd bool) map[string][]byte {
	events := record(0, entities.EventTypeCaptureStarted, "") +
		record(time.Second, entities.EventTypeActiveSpeaker, "a1")
	if withEnd {
		events += record(30*time.Second, entities.EventTypeCaptureEnded, "")
	}
	return map[string][]byte{
		"captures/m1/meeting-events/2021-03-04-10-00-00-000.txt": []byte(events),
		chunkKey(AudioFolder, 2*time.Second):                      []byte("a"),
		chunkKey(AudioFolder, 12*time.Second):                     []byte("a"),
	}
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Paths: config.PathsConfig{
			WorkDir:       t.TempDir(),
			CapturePrefix: "captures",
			OutputPrefix:  "output",
		},
		Worker: config.WorkerConfig{
			QueueSize:  4,
			JobTimeout: time.Minute,
			MaxRetries: 1,
		},
		Storage: config.StorageConfig{PresignExpiry: time.Hour},
	}
}

func TestProcess_UploadsArtifacts(t *testing.T) {
	t.Parallel()

	jobs := newMemoryJobs()
	store := &memoryStore{objects: captureObjects(true)}
	stitcher := &fakeStitcher{}
	svc := NewService(jobs, store, staticResolver{"a1": "alice"}, nil, stitcher, testConfig(t), nil)

	job := entities.NewProcessingJob("m1", "s1")
	if err := svc.Process(context.Background(), job); err != nil {
		t.Fatalf("process: %v", err)
	}

	want := []string{
		"output/s1/m1.srt",
		"output/s1/m1.vtt",
		"output/s1/m1-timeline.json",
		"output/s1/m1.mp4",
	}
	if strings.Join(store.uploads, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected uploads %v", store.uploads)
	}

	srt := string(store.objects["output/s1/m1.srt"])
	if !strings.Contains(srt, "00:00:01,000 --> 00:00:30,000") || !strings.Contains(srt, "alice talking") {
		t.Errorf("unexpected subtitles:\n%s", srt)
	}

	if !job.IsCompleted() || job.SegmentCount != 1 || job.CueCount != 1 {
		t.Errorf("unexpected job result %+v", job)
	}
	if job.VideoKey == nil || *job.VideoKey != "output/s1/m1.mp4" {
		t.Errorf("video key not recorded")
	}
	if stitcher.segments != 1 {
		t.Errorf("expected 1 stitched segment, got %d", stitcher.segments)
	}
}

func TestProcess_WithoutTranscoder(t *testing.T) {
	t.Parallel()

	store := &memoryStore{objects: captureObjects(true)}
	svc := NewService(newMemoryJobs(), store, staticResolver{}, nil, nil, testConfig(t), nil)

	job := entities.NewProcessingJob("m1", "s1")
	if err := svc.Process(context.Background(), job); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(store.uploads) != 3 || job.VideoKey != nil {
		t.Fatalf("expected subtitle and timeline uploads only, got %v", store.uploads)
	}
}

func TestProcess_MissingEndMarkerIsPermanent(t *testing.T) {
	t.Parallel()

	store := &memoryStore{objects: captureObjects(false)}
	svc := NewService(newMemoryJobs(), store, staticResolver{}, nil, &fakeStitcher{}, testConfig(t), nil)

	err := svc.Process(context.Background(), entities.NewProcessingJob("m1", "s1"))
	if !errors.Is(err, entities.ErrMissingCaptureEnd) {
		t.Fatalf("expected missing end marker, got %v", err)
	}
	if !jobcontext.IsPermanent(err) {
		t.Error("timeline errors must not be retried")
	}
	if len(store.uploads) != 0 {
		t.Errorf("nothing should be uploaded, got %v", store.uploads)
	}
}

func TestProcess_NoCaptures(t *testing.T) {
	t.Parallel()

	store := &memoryStore{objects: map[string][]byte{}}
	svc := NewService(newMemoryJobs(), store, nil, nil, nil, testConfig(t), nil)

	err := svc.Process(context.Background(), entities.NewProcessingJob("m1", "s1"))
	if !errors.Is(err, entities.ErrNoCaptureChunks) {
		t.Fatalf("expected ErrNoCaptureChunks, got %v", err)
	}
}

func TestProcess_StitchFailureUploadsNothing(t *testing.T) {
	t.Parallel()

	store := &memoryStore{objects: captureObjects(true)}
	svc := NewService(newMemoryJobs(), store, staticResolver{}, nil, &fakeStitcher{err: errors.New("ffmpeg failed")}, testConfig(t), nil)

	err := svc.Process(context.Background(), entities.NewProcessingJob("m1", "s1"))
	if err == nil {
		t.Fatal("expected stitch error")
	}
	if code := FailureCode(err); code != "INTEGRATION_TRANSCODER_FAILED" {
		t.Errorf("unexpected failure code %s", code)
	}
	if len(store.uploads) != 0 {
		t.Errorf("nothing should be uploaded, got %v", store.uploads)
	}
}

func TestEnqueue_ReturnsActiveJob(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryJobs(), &memoryStore{objects: map[string][]byte{}}, nil, nil, nil, testConfig(t), nil)

	first, err := svc.Enqueue(context.Background(), "m1", "s1")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	second, err := svc.Enqueue(context.Background(), "m1", "s1")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the active job to be reused")
	}

	if _, err := svc.Enqueue(context.Background(), " ", "s1"); !errors.Is(err, entities.ErrInvalidMeeting) {
		t.Fatalf("expected ErrInvalidMeeting, got %v", err)
	}
}

func TestWorkerPool_ProcessesQueuedJob(t *testing.T) {
	t.Parallel()

	jobs := newMemoryJobs()
	store := &memoryStore{objects: captureObjects(true)}
	svc := NewService(jobs, store, staticResolver{"a1": "alice"}, nil, nil, testConfig(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.StartWorkerPool(ctx, 2); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.StartWorkerPool(ctx, 2); err == nil {
		t.Error("second start should fail")
	}

	job, err := svc.Enqueue(ctx, "m1", "s1")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := svc.GetJob(ctx, job.ID)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if got.IsCompleted() {
			break
		}
		if got.IsFailed() {
			t.Fatalf("job failed: %s", *got.ProcessingError)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job not completed, status %s", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := svc.StopWorkerPool(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestWorkerPool_FailedJob(t *testing.T) {
	t.Parallel()

	jobs := newMemoryJobs()
	store := &memoryStore{objects: captureObjects(false)}
	svc := NewService(jobs, store, staticResolver{}, nil, nil, testConfig(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.StartWorkerPool(ctx, 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer svc.StopWorkerPool()

	job, err := svc.Enqueue(ctx, "m1", "s1")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, _ := svc.GetJob(ctx, job.ID)
		if got.IsFailed() {
			if !strings.Contains(*got.ProcessingError, "capture ended marker not found") {
				t.Errorf("unexpected error %s", *got.ProcessingError)
			}
			if got.ErrorCode == nil || *got.ErrorCode != "TIMELINE_INVALID" {
				t.Errorf("unexpected error code %v", got.ErrorCode)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("job not failed, status %s", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryJobs(), &memoryStore{}, nil, nil, nil, testConfig(t), nil)
	if _, err := svc.GetJob(context.Background(), uuid.New()); !errors.Is(err, entities.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestListArtifacts_FiltersOtherMeetings(t *testing.T) {
	t.Parallel()

	store := &memoryStore{objects: map[string][]byte{
		"output/s1/m1.mp4":           []byte("v"),
		"output/s1/m1.srt":           []byte("s"),
		"output/s1/m1-timeline.json": []byte("{}"),
		"output/s1/m10.mp4":          []byte("other"),
		"output/s1/m1-notes.txt":     []byte("x"),
	}}
	svc := NewService(newMemoryJobs(), store, nil, nil, nil, testConfig(t), nil)

	artifacts, err := svc.ListArtifacts(context.Background(), "s1", "m1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %+v", artifacts)
	}
	for _, a := range artifacts {
		if a.URL != "https://storage.test/"+a.Key {
			t.Errorf("unexpected url %s", a.URL)
		}
	}
}

func TestLoadEventSources_SortedByName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sources, err := LoadEventSources(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sources) != 2 || sources[0].Name != "a.txt" || sources[1].Name != "b.txt" {
		t.Fatalf("unexpected sources %+v", sources)
	}

	missing, err := LoadEventSources(filepath.Join(dir, "missing"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing dir should give no sources, got %v %v", missing, err)
	}
}

func TestFailureCode_Unclassified(t *testing.T) {
	if code := FailureCode(errors.New("boom")); code != "PROCESSING_FAILED" {
		t.Fatalf("unexpected failure code %s", code)
	}
}
