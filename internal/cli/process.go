package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
	"github.com/johnquangdev/capture-stitcher/internal/infrastructure/transcoder"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/recording"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/speaker"
	"github.com/johnquangdev/capture-stitcher/internal/usecase/timeline"
)

type processOptions struct {
	captureDir string
	eventsDir  string
	audioDir   string
	videoDir   string
	speakers   string
	outDir     string
	name       string
	transcode  bool
}

// resolve fills the per-folder directories from the capture directory
func (o *processOptions) resolve() error {
	if o.captureDir == "" && (o.eventsDir == "" || o.audioDir == "") {
		return fmt.Errorf("either --capture or both --events and --audio are required")
	}
	if o.eventsDir == "" {
		o.eventsDir = filepath.Join(o.captureDir, recording.EventsFolder)
	}
	if o.audioDir == "" {
		o.audioDir = filepath.Join(o.captureDir, recording.AudioFolder)
	}
	if o.videoDir == "" && o.captureDir != "" {
		o.videoDir = filepath.Join(o.captureDir, recording.VideoFolder)
	}
	if o.outDir == "" {
		o.outDir = "."
	}
	if o.name == "" {
		o.name = "recording"
	}
	return nil
}

// NewProcessCmd rebuilds one recording from a local capture directory
func NewProcessCmd(deps *Dependencies) *cobra.Command {
	opts := &processOptions{}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Rebuild a recording from local capture files",
		Example: `  stitcher process --capture ./captures/m1 --out ./out
  stitcher process --events ./log --audio ./audio --speakers speakers.json --transcode=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(); err != nil {
				return err
			}

			var stitcher recording.Stitcher
			if opts.transcode {
				stitcher = transcoder.NewFFmpeg(
					transcoder.NewExecRunner(deps.Config.Transcode.FFmpegPath, deps.Logger),
					deps.Config.Transcode,
					deps.Logger,
				)
			}

			return runProcess(cmd, opts, stitcher, deps.Logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.captureDir, "capture", "", "capture directory holding audio/, video/ and meeting-events/")
	flags.StringVar(&opts.eventsDir, "events", "", "event log directory (overrides --capture)")
	flags.StringVar(&opts.audioDir, "audio", "", "camera chunk directory (overrides --capture)")
	flags.StringVar(&opts.videoDir, "video", "", "screen share chunk directory (overrides --capture)")
	flags.StringVar(&opts.speakers, "speakers", "", "JSON file mapping attendee IDs to external user IDs")
	flags.StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	flags.StringVar(&opts.name, "name", "recording", "base name of the stitched video")
	flags.BoolVar(&opts.transcode, "transcode", deps.Config.Transcode.Enabled, "stitch the video with ffmpeg")

	return cmd
}

func runProcess(cmd *cobra.Command, opts *processOptions, stitcher recording.Stitcher, logger *zap.Logger) error {
	ctx := cmd.Context()

	sources, err := recording.LoadEventSources(opts.eventsDir)
	if err != nil {
		return err
	}

	directory, err := loadSpeakerFile(opts.speakers)
	if err != nil {
		return err
	}

	res, err := timeline.NewEngine(logger).Build(ctx, timeline.Input{
		Sources:  sources,
		AudioDir: opts.audioDir,
		VideoDir: opts.videoDir,
		Speakers: timeline.StaticSpeakers(directory),
	})
	if err != nil {
		return err
	}

	local, err := recording.WriteArtifacts(opts.outDir, res)
	if err != nil {
		return err
	}

	if stitcher != nil {
		if len(res.Segments) == 0 {
			return fmt.Errorf("nothing to stitch: no segment has camera chunks")
		}
		out := filepath.Join(opts.outDir, opts.name+".mp4")
		stitched, err := stitcher.Stitch(ctx, filepath.Join(opts.outDir, "work"), res.Segments, local.SubtitleSRT, out)
		if err != nil {
			return err
		}
		local.Video = stitched.Output
	}

	printSummary(cmd.OutOrStdout(), res, local)
	return nil
}

// loadSpeakerFile reads {"attendeeId": "externalUserId"}. An empty path yields no names.
func loadSpeakerFile(file string) (entities.SpeakerDirectory, error) {
	if file == "" {
		return entities.SpeakerDirectory{}, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read speakers file: %w", err)
	}

	var attendees map[string]string
	if err := json.Unmarshal(data, &attendees); err != nil {
		return nil, fmt.Errorf("failed to parse speakers file: %w", err)
	}
	return speaker.Directory(attendees), nil
}

func printSummary(w io.Writer, res *timeline.Result, local *recording.LocalArtifacts) {
	fmt.Fprintf(w, "✅ Timeline rebuilt\n")
	fmt.Fprintf(w, "Window:       %s → %s (%s)\n",
		res.Window.Start.Format("15:04:05.000"),
		res.Window.End.Format("15:04:05.000"),
		res.Window.Duration())
	fmt.Fprintf(w, "Segments:     %d (%d overlay)\n", len(res.Segments), res.OverlayCount())
	fmt.Fprintf(w, "Cues:         %d\n", len(res.Cues))
	if n := len(res.ParseFailures); n > 0 {
		fmt.Fprintf(w, "Dropped:      %d unreadable event records\n", n)
	}
	if res.Restarts > 0 {
		fmt.Fprintf(w, "Restarts:     %d\n", res.Restarts)
	}
	fmt.Fprintf(w, "Subtitles:    %s, %s\n", local.SubtitleSRT, local.SubtitleVTT)
	fmt.Fprintf(w, "Timeline:     %s\n", local.Timeline)
	if local.Video != "" {
		fmt.Fprintf(w, "Video:        %s\n", local.Video)
	}
}
