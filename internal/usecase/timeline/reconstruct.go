package timeline

import (
	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// ReconstructReport lists intervals that did not become segments as closed
type ReconstructReport struct {
	// Dropped intervals were empty or had no audio
	Dropped []Interval `json:"dropped,omitempty"`
	// Demoted overlay intervals had audio but no screen content and became plain
	Demoted []Interval `json:"demoted,omitempty"`
}

// Reconstruct matches chunks against every interval and emits the segment list.
// A nil index behaves as an empty directory.
func Reconstruct(intervals []Interval, audio, video *ChunkIndex) ([]entities.Segment, ReconstructReport) {
	var (
		segments []entities.Segment
		report   ReconstructReport
	)

	for _, iv := range intervals {
		if iv.Empty() {
			report.Dropped = append(report.Dropped, iv)
			continue
		}

		audioChunks := audio.Match(iv.Start, iv.End)
		if len(audioChunks) == 0 {
			report.Dropped = append(report.Dropped, iv)
			continue
		}

		seg := entities.Segment{
			Kind:  entities.SegmentKindPlain,
			Start: iv.Start,
			End:   iv.End,
			Audio: audioChunks,
		}

		if iv.Kind == entities.SegmentKindOverlay {
			videoChunks := video.Match(iv.Start, iv.End)
			if len(videoChunks) == 0 {
				report.Demoted = append(report.Demoted, iv)
			} else {
				seg.Kind = entities.SegmentKindOverlay
				seg.Video = videoChunks
			}
		}

		segments = append(segments, seg)
	}

	return segments, report
}
