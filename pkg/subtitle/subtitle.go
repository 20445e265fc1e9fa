package subtitle

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// Format specifies the output format.
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// OverlaySRTPosition places overlay captions next to the camera picture-in-picture
const OverlaySRTPosition = "X1:600 X2:625 Y1:100 Y2:100"

// OverlayVTTSettings is the WebVTT equivalent of OverlaySRTPosition
const OverlayVTTSettings = "line:10% position:70% align:start"

// Write renders cues in the given format
func Write(w io.Writer, format Format, cues []entities.Cue) error {
	switch format {
	case FormatSRT:
		return WriteSRT(w, cues)
	case FormatVTT:
		return WriteVTT(w, cues)
	default:
		return fmt.Errorf("unsupported subtitle format %q", format)
	}
}

// WriteSRT renders cues as SubRip. Overlay cues carry a position hint on the timing line.
// Cues without text are skipped and the remaining ones are numbered from 1.
func WriteSRT(w io.Writer, cues []entities.Cue) error {
	bw := bufio.NewWriter(w)
	n := 0
	for _, cue := range cues {
		if cue.Text == "" {
			continue
		}
		n++
		// Format: index\nstart --> end [position]\ntext\n\n
		fmt.Fprintf(bw, "%d\n", n)
		fmt.Fprintf(bw, "%s --> %s", formatSRTTime(cue.Start), formatSRTTime(cue.End))
		if cue.Style == entities.CueStyleOverlay {
			fmt.Fprintf(bw, " %s", OverlaySRTPosition)
		}
		fmt.Fprintf(bw, "\n%s\n\n", cue.Text)
	}
	return bw.Flush()
}

// WriteVTT renders cues as WebVTT, skipping cues without text like WriteSRT
func WriteVTT(w io.Writer, cues []entities.Cue) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("WEBVTT\n\n")
	n := 0
	for _, cue := range cues {
		if cue.Text == "" {
			continue
		}
		n++
		fmt.Fprintf(bw, "%d\n", n)
		fmt.Fprintf(bw, "%s --> %s", formatVTTTime(cue.Start), formatVTTTime(cue.End))
		if cue.Style == entities.CueStyleOverlay {
			fmt.Fprintf(bw, " %s", OverlayVTTSettings)
		}
		fmt.Fprintf(bw, "\n%s\n\n", cue.Text)
	}
	return bw.Flush()
}

// Render returns the cues in the given format as bytes
func Render(format Format, cues []entities.Cue) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, cues); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatSRTTime formats a duration as SRT timestamp (HH:MM:SS,mmm).
func formatSRTTime(d time.Duration) string {
	h, m, s, ms := split(d)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// formatVTTTime formats a duration as VTT timestamp (HH:MM:SS.mmm).
func formatVTTTime(d time.Duration) string {
	h, m, s, ms := split(d)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func split(d time.Duration) (hours, minutes, seconds, millis int) {
	if d < 0 {
		d = 0
	}
	hours = int(d.Hours())
	minutes = int(d.Minutes()) % 60
	seconds = int(d.Seconds()) % 60
	millis = int(d.Milliseconds()) % 1000
	return
}
