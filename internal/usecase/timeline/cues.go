package timeline

import (
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// Style transition timings
const (
	// TransitionMaxGap is the largest gap between cues of different style that gets repaired
	TransitionMaxGap = 1000 * time.Millisecond
	// TransitionTrim shortens the cue before a style change
	TransitionTrim = 200 * time.Millisecond
	// TransitionDelay postpones the first cue after a style change
	TransitionDelay = 800 * time.Millisecond
	// TransitionCarry separates a cue from the last survivor after a dropped cue
	TransitionCarry = 1000 * time.Millisecond
)

const plainCaptionSuffix = " talking"

// CaptionText renders a speaker name for the given cue style
func CaptionText(name string, style entities.CueStyle) string {
	if name == "" {
		return ""
	}
	if style == entities.CueStyleOverlay {
		return name
	}
	return name + plainCaptionSuffix
}

// GenerateCues opens one cue per speaker turn. Each cue lasts until the next turn,
// the last one until the end of the recording.
func GenerateCues(turns []SpeakerTurn, window entities.RecordingWindow, speakers entities.SpeakerDirectory) []entities.Cue {
	cues := make([]entities.Cue, 0, len(turns))
	for _, turn := range turns {
		at := window.Offset(turn.At)
		if n := len(cues); n > 0 {
			cues[n-1].End = at
		}
		cues = append(cues, entities.Cue{
			Start: at,
			Text:  CaptionText(speakers.Name(turn.AttendeeID), turn.Style),
			Style: turn.Style,
		})
	}
	if n := len(cues); n > 0 {
		cues[n-1].End = window.Duration()
	}
	return cues
}

// RepairTransitions smooths cue boundaries where the style changes so captions do not
// flicker while the picture layout switches. The input is not modified.
//
// For a style change with a gap of at most TransitionMaxGap: the first change of a run
// trims the previous cue and delays the current one; after a dropped cue the current one
// starts TransitionCarry after the last surviving cue. A cue pushed past its own end is
// dropped. Cues left with no duration are removed at the end.
func RepairTransitions(cues []entities.Cue) []entities.Cue {
	out := make([]entities.Cue, 0, len(cues))
	run := 1

	for _, cur := range cues {
		if len(out) == 0 {
			out = append(out, cur)
			continue
		}

		last := &out[len(out)-1]
		if cur.Style == last.Style || cur.Start-last.End > TransitionMaxGap {
			out = append(out, cur)
			continue
		}

		if run > 1 {
			cur.Start = last.End + TransitionCarry
		} else {
			last.End -= TransitionTrim
			cur.Start += TransitionDelay
		}

		if cur.Start > cur.End {
			run++
			continue
		}

		run = 1
		out = append(out, cur)
	}

	repaired := out[:0]
	for _, c := range out {
		if c.Start < c.End {
			repaired = append(repaired, c)
		}
	}
	return repaired
}
