package entities

import "time"

// SegmentKind tells the transcoder how to stitch a segment
type SegmentKind string

const (
	// SegmentKindPlain is camera and audio only
	SegmentKindPlain SegmentKind = "plain"
	// SegmentKindOverlay is screen content with the camera feed on top
	SegmentKindOverlay SegmentKind = "overlay"
)

// ChunkRef points to one media fragment on disk
type ChunkRef struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// Segment is one contiguous interval of the recording.
// Plain segments carry no video chunks; overlay segments always carry both.
type Segment struct {
	Kind  SegmentKind `json:"kind"`
	Start time.Time   `json:"start"`
	End   time.Time   `json:"end"`
	Audio []ChunkRef  `json:"audio"`
	Video []ChunkRef  `json:"video,omitempty"`
}

// IsOverlay reports whether the segment needs the overlay step
func (s Segment) IsOverlay() bool {
	return s.Kind == SegmentKindOverlay
}

// Duration returns the segment length
func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}
