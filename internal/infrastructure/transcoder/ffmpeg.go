package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/pkg/config"
)

// Overlay layout: the camera picture goes into the top right corner of the screen content
const (
	OverlayFilter = "[1] scale=480:270 [over]; [0][over] overlay=1440:0"
	// FinalManifestName lists the stitched segments in order
	FinalManifestName = "ffmpeg-input.txt"
)

// maxStderrTail bounds the ffmpeg output kept in errors
const maxStderrTail = 2048

// Runner executes one ffmpeg invocation
type Runner interface {
	Run(ctx context.Context, args []string) error
}

// ExecRunner runs the ffmpeg binary
type ExecRunner struct {
	binary string
	logger *zap.Logger
}

// NewExecRunner creates a runner for the given ffmpeg binary
func NewExecRunner(binary string, logger *zap.Logger) *ExecRunner {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &ExecRunner{binary: binary, logger: logger}
}

// Run executes ffmpeg and returns its stderr tail on failure
func (r *ExecRunner) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.logger != nil {
		r.logger.Debug("🔧 Running FFmpeg", zap.Strings("args", args))
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, tail(stderr.String(), maxStderrTail))
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// FFmpeg stitches segments into one video
type FFmpeg struct {
	runner Runner
	cfg    config.TranscodeConfig
	logger *zap.Logger
}

// NewFFmpeg creates a transcoder around runner
func NewFFmpeg(runner Runner, cfg config.TranscodeConfig, logger *zap.Logger) *FFmpeg {
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.FPS == "" {
		cfg.FPS = "14.98"
	}
	return &FFmpeg{runner: runner, cfg: cfg, logger: logger}
}

// Concat joins the files listed in a concat manifest without re-encoding
func (f *FFmpeg) Concat(ctx context.Context, manifest, output string) error {
	return f.runner.Run(ctx, []string{
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		"-y", output,
	})
}

// Overlay puts the camera recording on top of the screen content
func (f *FFmpeg) Overlay(ctx context.Context, content, camera, output string) error {
	return f.runner.Run(ctx, []string{
		"-i", content,
		"-i", camera,
		"-filter_complex", OverlayFilter,
		"-y", output,
	})
}

// Normalize scales and resamples a segment so it concatenates with camera-only segments
func (f *FFmpeg) Normalize(ctx context.Context, input, output string) error {
	return f.runner.Run(ctx, []string{
		"-i", input,
		"-vf", fmt.Sprintf("scale=%d:%d,fps=fps=%s", f.cfg.Width, f.cfg.Height, f.cfg.FPS),
		"-y", output,
	})
}

// BurnSubtitles renders a subtitle file into the picture
func (f *FFmpeg) BurnSubtitles(ctx context.Context, input, subtitles, output string) error {
	return f.runner.Run(ctx, []string{
		"-i", input,
		"-vf", "subtitles=" + escapeFilterValue(subtitles),
		"-y", output,
	})
}

// StitchResult lists the files produced by Stitch
type StitchResult struct {
	Parts     []string `json:"parts"`
	Manifests []string `json:"manifests"`
	Output    string   `json:"output"`
}

// Stitch turns every segment into one part, concatenates the parts and burns in
// the subtitles when subtitles is not empty. Intermediate files are written to dir.
func (f *FFmpeg) Stitch(ctx context.Context, dir string, segments []entities.Segment, subtitles, output string) (*StitchResult, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("nothing to stitch")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stitch dir: %w", err)
	}

	res := &StitchResult{Output: output}
	for i, seg := range segments {
		part, manifests, err := f.stitchSegment(ctx, dir, i, seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", i, seg.Kind, err)
		}
		res.Parts = append(res.Parts, part)
		res.Manifests = append(res.Manifests, manifests...)

		if f.logger != nil {
			f.logger.Info("🎬 Segment stitched",
				zap.Int("index", i),
				zap.String("kind", string(seg.Kind)),
				zap.Int("audio_chunks", len(seg.Audio)),
				zap.Int("video_chunks", len(seg.Video)))
		}
	}

	final := filepath.Join(dir, FinalManifestName)
	if err := WriteManifest(final, res.Parts); err != nil {
		return nil, err
	}
	res.Manifests = append(res.Manifests, final)

	joined := output
	if subtitles != "" {
		joined = strings.TrimSuffix(output, filepath.Ext(output)) + "-no-sub" + filepath.Ext(output)
	}
	if err := f.Concat(ctx, final, joined); err != nil {
		return nil, fmt.Errorf("failed to join segments: %w", err)
	}

	if subtitles != "" {
		if err := f.BurnSubtitles(ctx, joined, subtitles, output); err != nil {
			return nil, fmt.Errorf("failed to burn subtitles: %w", err)
		}
	}

	return res, nil
}

func (f *FFmpeg) stitchSegment(ctx context.Context, dir string, index int, seg entities.Segment) (string, []string, error) {
	part := filepath.Join(dir, fmt.Sprintf("%d.mp4", index))

	if !seg.IsOverlay() {
		manifest := filepath.Join(dir, fmt.Sprintf("%d.txt", index))
		if err := WriteManifest(manifest, chunkPaths(seg.Audio)); err != nil {
			return "", nil, err
		}
		if err := f.Concat(ctx, manifest, part); err != nil {
			return "", nil, err
		}
		return part, []string{manifest}, nil
	}

	var (
		audioManifest = filepath.Join(dir, fmt.Sprintf("%d-audio.txt", index))
		videoManifest = filepath.Join(dir, fmt.Sprintf("%d-video.txt", index))
		camera        = filepath.Join(dir, fmt.Sprintf("audio-%d.mp4", index))
		content       = filepath.Join(dir, fmt.Sprintf("video-%d.mp4", index))
		notScaled     = filepath.Join(dir, fmt.Sprintf("%d-not-scaled.mp4", index))
	)

	if err := WriteManifest(audioManifest, chunkPaths(seg.Audio)); err != nil {
		return "", nil, err
	}
	if err := WriteManifest(videoManifest, chunkPaths(seg.Video)); err != nil {
		return "", nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.Concat(gctx, audioManifest, camera) })
	g.Go(func() error { return f.Concat(gctx, videoManifest, content) })
	if err := g.Wait(); err != nil {
		return "", nil, err
	}

	if err := f.Overlay(ctx, content, camera, notScaled); err != nil {
		return "", nil, err
	}
	if err := f.Normalize(ctx, notScaled, part); err != nil {
		return "", nil, err
	}

	return part, []string{audioManifest, videoManifest}, nil
}

func chunkPaths(chunks []entities.ChunkRef) []string {
	paths := make([]string, len(chunks))
	for i, c := range chunks {
		paths[i] = c.Path
	}
	return paths
}

// WriteManifest writes a concat demuxer list, one "file '<path>'" line per file
func WriteManifest(path string, files []string) error {
	var buf bytes.Buffer
	for _, file := range files {
		buf.WriteString("file '")
		buf.WriteString(strings.ReplaceAll(file, "'", `'\''`))
		buf.WriteString("'\n")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// escapeFilterValue escapes a path used as a filtergraph option value
func escapeFilterValue(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`,`, `\,`,
		`;`, `\;`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return r.Replace(s)
}
