package timeline

import (
	"slices"
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// AnnotatedEvent is an event with its corrected time and the sharing state after it
type AnnotatedEvent struct {
	entities.Event
	At        time.Time `json:"at"`
	Corrected bool      `json:"corrected,omitempty"`
	Sharing   bool      `json:"sharing"`
}

// Interval is a closed segment of the recording before chunk matching
type Interval struct {
	Kind  entities.SegmentKind `json:"kind"`
	Start time.Time            `json:"start"`
	End   time.Time            `json:"end"`
}

// Empty reports whether the interval has no length
func (iv Interval) Empty() bool {
	return !iv.Start.Before(iv.End)
}

// SpeakerTurn is an ActiveSpeaker event with the cue style in effect
type SpeakerTurn struct {
	At         time.Time         `json:"at"`
	AttendeeID string            `json:"attendee_id"`
	Style      entities.CueStyle `json:"style"`
}

// Annotation is the result of the single scan over the event stream.
// Segment closing and cue generation both read from it.
type Annotation struct {
	Events    []AnnotatedEvent
	Intervals []Interval
	Turns     []SpeakerTurn
	Corrected int
}

// correctedTimes returns the effective timestamp of every event. An event stamped
// before the window start takes the time of the nearest following event that is not,
// or the window end when there is none.
func correctedTimes(events []entities.Event, window entities.RecordingWindow) []time.Time {
	at := make([]time.Time, len(events))
	next := window.End
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Timestamp.Before(window.Start) {
			at[i] = next
			continue
		}
		at[i] = events[i].Timestamp
		next = events[i].Timestamp
	}
	return at
}

func clamp(t time.Time, window entities.RecordingWindow) time.Time {
	if t.Before(window.Start) {
		return window.Start
	}
	if t.After(window.End) {
		return window.End
	}
	return t
}

// Annotate corrects event clocks, orders the events and runs the sharing state machine.
// Events are expected in arrival order.
func Annotate(events []entities.Event, window entities.RecordingWindow) Annotation {
	times := correctedTimes(events, window)

	var ann Annotation
	ann.Events = make([]AnnotatedEvent, len(events))
	for i, ev := range events {
		corrected := !times[i].Equal(ev.Timestamp)
		if corrected {
			ann.Corrected++
		}
		ann.Events[i] = AnnotatedEvent{Event: ev, At: times[i], Corrected: corrected}
	}
	slices.SortStableFunc(ann.Events, func(a, b AnnotatedEvent) int {
		return a.At.Compare(b.At)
	})

	closeInterval := func(kind entities.SegmentKind, start, end time.Time) {
		ann.Intervals = append(ann.Intervals, Interval{
			Kind:  kind,
			Start: clamp(start, window),
			End:   clamp(end, window),
		})
	}

	var (
		sharing      bool
		segmentStart = window.Start
		shareStart   time.Time
	)

	for i := range ann.Events {
		ev := &ann.Events[i]

		switch {
		case ev.Type == entities.EventTypeActiveSpeaker:
			style := entities.CueStylePlain
			if sharing {
				style = entities.CueStyleOverlay
			}
			ann.Turns = append(ann.Turns, SpeakerTurn{
				At:         ev.At,
				AttendeeID: ev.AttendeeID,
				Style:      style,
			})

		case ev.IsShareStarted():
			if !sharing {
				closeInterval(entities.SegmentKindPlain, segmentStart, ev.At)
				sharing = true
				shareStart = ev.At
			}

		case ev.IsShareStopped():
			if sharing {
				closeInterval(entities.SegmentKindOverlay, shareStart, ev.At)
				sharing = false
				segmentStart = ev.At
			}
		}

		ev.Sharing = sharing
	}

	if sharing {
		closeInterval(entities.SegmentKindOverlay, shareStart, window.End)
	} else {
		closeInterval(entities.SegmentKindPlain, segmentStart, window.End)
	}

	return ann
}
