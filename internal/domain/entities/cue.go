package entities

import "time"

// CueStyle is the visual presentation of a subtitle cue
type CueStyle string

const (
	CueStylePlain   CueStyle = "plain"
	CueStyleOverlay CueStyle = "overlay"
)

// Cue is one subtitle display interval, relative to the recording start
type Cue struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
	Style CueStyle      `json:"style"`
}

// Duration returns End - Start
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}
