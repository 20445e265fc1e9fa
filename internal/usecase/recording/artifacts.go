package recording

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/johnquangdev/capture-stitcher/internal/usecase/timeline"
	"github.com/johnquangdev/capture-stitcher/pkg/subtitle"
)

// Capture layout below captures/<meeting>/
const (
	AudioFolder  = "audio"
	VideoFolder  = "video"
	EventsFolder = "meeting-events"
)

// Local artifact names
const (
	SubtitleSRTName = "sub.srt"
	SubtitleVTTName = "sub.vtt"
	TimelineName    = "timeline.json"
)

// LocalArtifacts are the files written for one run
type LocalArtifacts struct {
	SubtitleSRT string `json:"subtitle_srt"`
	SubtitleVTT string `json:"subtitle_vtt"`
	Timeline    string `json:"timeline"`
	Video       string `json:"video,omitempty"`
}

// LoadEventSources reads every event-log chunk in dir ordered by file name.
// A missing directory yields no sources.
func LoadEventSources(dir string) ([]timeline.EventSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read event directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	sources := make([]timeline.EventSource, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read event log %s: %w", name, err)
		}
		sources = append(sources, timeline.EventSource{Name: name, Data: data})
	}
	return sources, nil
}

// WriteArtifacts writes both subtitle formats and the timeline document into dir
func WriteArtifacts(dir string, res *timeline.Result) (*LocalArtifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	out := &LocalArtifacts{
		SubtitleSRT: filepath.Join(dir, SubtitleSRTName),
		SubtitleVTT: filepath.Join(dir, SubtitleVTTName),
		Timeline:    filepath.Join(dir, TimelineName),
	}

	for format, file := range map[subtitle.Format]string{
		subtitle.FormatSRT: out.SubtitleSRT,
		subtitle.FormatVTT: out.SubtitleVTT,
	} {
		data, err := subtitle.Render(format, res.Cues)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file, err)
		}
	}

	doc, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode timeline: %w", err)
	}
	if err := os.WriteFile(out.Timeline, doc, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out.Timeline, err)
	}

	return out, nil
}

// OutputKeys are the object keys of a meeting's artifacts
type OutputKeys struct {
	Video       string
	SubtitleSRT string
	SubtitleVTT string
	Timeline    string
}

// NewOutputKeys builds output/<session>/<meeting>{.mp4,.srt,.vtt,-timeline.json}
func NewOutputKeys(prefix, sessionID, meetingID string) OutputKeys {
	base := path.Join(prefix, sessionID, meetingID)
	return OutputKeys{
		Video:       base + ".mp4",
		SubtitleSRT: base + ".srt",
		SubtitleVTT: base + ".vtt",
		Timeline:    base + "-timeline.json",
	}
}

// All returns every key in upload order
func (k OutputKeys) All() []string {
	return []string{k.SubtitleSRT, k.SubtitleVTT, k.Timeline, k.Video}
}

// CapturePrefix is the object prefix of a meeting's captured media and events
func CapturePrefix(prefix, meetingID string) string {
	return path.Join(prefix, meetingID) + "/"
}
