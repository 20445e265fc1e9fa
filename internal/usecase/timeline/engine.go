package timeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// SpeakerLookup resolves the speaker directory of a run
type SpeakerLookup func(ctx context.Context) (entities.SpeakerDirectory, error)

// StaticSpeakers returns a lookup that always yields dir
func StaticSpeakers(dir entities.SpeakerDirectory) SpeakerLookup {
	return func(context.Context) (entities.SpeakerDirectory, error) {
		return dir, nil
	}
}

// Input is everything needed to rebuild one recording
type Input struct {
	Sources  []EventSource
	AudioDir string
	VideoDir string
	Speakers SpeakerLookup
}

// Result is the assembled timeline. It is not modified after Assemble returns.
type Result struct {
	Window          entities.RecordingWindow `json:"window"`
	Segments        []entities.Segment       `json:"segments"`
	Cues            []entities.Cue           `json:"cues"`
	ParseFailures   []ParseFailure           `json:"parse_failures,omitempty"`
	Dropped         []Interval               `json:"dropped,omitempty"`
	Demoted         []Interval               `json:"demoted,omitempty"`
	CorrectedEvents int                      `json:"corrected_events"`
	Restarts        int                      `json:"restarts"`
}

// OverlayCount returns the number of overlay segments
func (r *Result) OverlayCount() int {
	n := 0
	for _, seg := range r.Segments {
		if seg.IsOverlay() {
			n++
		}
	}
	return n
}

// Engine rebuilds recording timelines
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new timeline engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Build loads the event log, the speaker directory and both chunk directories
// concurrently, then assembles the timeline.
func (e *Engine) Build(ctx context.Context, in Input) (*Result, error) {
	var (
		log      *EventLog
		speakers entities.SpeakerDirectory
		audio    *ChunkIndex
		video    *ChunkIndex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		log, err = Normalize(gctx, in.Sources)
		return err
	})
	g.Go(func() error {
		if in.Speakers == nil {
			return nil
		}
		var err error
		speakers, err = in.Speakers(gctx)
		if err != nil {
			return fmt.Errorf("failed to resolve speakers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		audio, err = ScanChunkDir(in.AudioDir)
		return err
	})
	g.Go(func() error {
		var err error
		video, err = ScanChunkDir(in.VideoDir)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// no partial result once the deadline has passed
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n := len(audio.Skipped) + len(video.Skipped); n > 0 {
		e.logger.Warn("⚠️ Skipped chunk files with undecodable names",
			zap.Int("count", n),
			zap.Strings("audio", audio.Skipped),
			zap.Strings("video", video.Skipped))
	}

	return e.Assemble(log, audio, video, speakers), nil
}

// Assemble runs the annotation pass, closes segments and synthesizes cues
func (e *Engine) Assemble(log *EventLog, audio, video *ChunkIndex, speakers entities.SpeakerDirectory) *Result {
	ann := Annotate(log.Events, log.Window)

	segments, report := Reconstruct(ann.Intervals, audio, video)
	cues := RepairTransitions(GenerateCues(ann.Turns, log.Window, speakers))

	for _, f := range log.Failures {
		e.logger.Warn("⚠️ Dropped event record", zap.Error(f))
	}
	for _, iv := range report.Demoted {
		e.logger.Info("Overlay interval has no screen content, using plain",
			zap.Time("start", iv.Start), zap.Time("end", iv.End))
	}

	res := &Result{
		Window:          log.Window,
		Segments:        segments,
		Cues:            cues,
		ParseFailures:   log.Failures,
		Dropped:         report.Dropped,
		Demoted:         report.Demoted,
		CorrectedEvents: ann.Corrected,
		Restarts:        log.Restarts,
	}

	e.logger.Info("✅ Timeline assembled",
		zap.Time("window_start", log.Window.Start),
		zap.Duration("duration", log.Window.Duration()),
		zap.Int("events", len(log.Events)),
		zap.Int("segments", len(segments)),
		zap.Int("overlays", res.OverlayCount()),
		zap.Int("cues", len(cues)),
		zap.Int("parse_failures", len(log.Failures)),
		zap.Int("corrected_events", ann.Corrected))

	return res
}
