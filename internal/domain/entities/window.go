package entities

import "time"

// RecordingWindow is the capture interval every relative timestamp is measured from
type RecordingWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the recording
func (w RecordingWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Offset returns t relative to the window start
func (w RecordingWindow) Offset(t time.Time) time.Duration {
	return t.Sub(w.Start)
}
