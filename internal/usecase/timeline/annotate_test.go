package timeline

import (
	"testing"
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

func ev(ts time.Time, typ entities.EventType, attendee string, modality entities.MediaModality) entities.Event {
	return entities.Event{Type: typ, Timestamp: ts, AttendeeID: attendee, MediaModality: modality}
}

func window(d time.Duration) entities.RecordingWindow {
	return entities.RecordingWindow{Start: t0, End: t0.Add(d)}
}

func shareStart(ts time.Time) entities.Event {
	return ev(ts, entities.EventTypeAttendeeVideoJoined, "bob", entities.MediaModalityContent)
}

func shareStop(ts time.Time) entities.Event {
	return ev(ts, entities.EventTypeAttendeeVideoLeft, "bob", entities.MediaModalityContent)
}

func assertIntervals(t *testing.T, got []Interval, want ...Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d intervals, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("interval %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestAnnotate_PlainOnly(t *testing.T) {
	t.Parallel()

	ann := Annotate([]entities.Event{
		ev(at(0), entities.EventTypeCaptureStarted, "", ""),
		ev(at(time.Second), entities.EventTypeActiveSpeaker, "alice", ""),
		ev(at(5*time.Second), entities.EventTypeCaptureEnded, "", ""),
	}, window(5*time.Second))

	assertIntervals(t, ann.Intervals, Interval{entities.SegmentKindPlain, at(0), at(5 * time.Second)})
	if len(ann.Turns) != 1 || ann.Turns[0].Style != entities.CueStylePlain {
		t.Fatalf("unexpected turns %+v", ann.Turns)
	}
}

func TestAnnotate_ShareAlternation(t *testing.T) {
	t.Parallel()

	ann := Annotate([]entities.Event{
		ev(at(0), entities.EventTypeCaptureStarted, "", ""),
		shareStart(at(10 * time.Second)),
		ev(at(12*time.Second), entities.EventTypeActiveSpeaker, "bob", ""),
		shareStop(at(20 * time.Second)),
		ev(at(25*time.Second), entities.EventTypeActiveSpeaker, "alice", ""),
		ev(at(30*time.Second), entities.EventTypeCaptureEnded, "", ""),
	}, window(30*time.Second))

	assertIntervals(t, ann.Intervals,
		Interval{entities.SegmentKindPlain, at(0), at(10 * time.Second)},
		Interval{entities.SegmentKindOverlay, at(10 * time.Second), at(20 * time.Second)},
		Interval{entities.SegmentKindPlain, at(20 * time.Second), at(30 * time.Second)},
	)
	if ann.Turns[0].Style != entities.CueStyleOverlay || ann.Turns[1].Style != entities.CueStylePlain {
		t.Errorf("unexpected turn styles %+v", ann.Turns)
	}
}

func TestAnnotate_IgnoresDuplicateAndStrayShareEvents(t *testing.T) {
	t.Parallel()

	ann := Annotate([]entities.Event{
		shareStop(at(time.Second)),
		shareStart(at(2 * time.Second)),
		shareStart(at(3 * time.Second)),
		ev(at(4*time.Second), entities.EventTypeAttendeeVideoLeft, "carol", "Video"),
		shareStop(at(5 * time.Second)),
		shareStop(at(6 * time.Second)),
	}, window(10*time.Second))

	assertIntervals(t, ann.Intervals,
		Interval{entities.SegmentKindPlain, at(0), at(2 * time.Second)},
		Interval{entities.SegmentKindOverlay, at(2 * time.Second), at(5 * time.Second)},
		Interval{entities.SegmentKindPlain, at(5 * time.Second), at(10 * time.Second)},
	)
}

func TestAnnotate_ShareOpenAtEndClosesOverlay(t *testing.T) {
	t.Parallel()

	ann := Annotate([]entities.Event{
		shareStart(at(4 * time.Second)),
	}, window(10*time.Second))

	assertIntervals(t, ann.Intervals,
		Interval{entities.SegmentKindPlain, at(0), at(4 * time.Second)},
		Interval{entities.SegmentKindOverlay, at(4 * time.Second), at(10 * time.Second)},
	)
	if !ann.Events[0].Sharing {
		t.Error("expected sharing state after share start")
	}
}

func TestAnnotate_CorrectsSkewedClock(t *testing.T) {
	t.Parallel()

	epoch := time.Unix(0, 0).UTC()
	ann := Annotate([]entities.Event{
		ev(at(0), entities.EventTypeCaptureStarted, "", ""),
		shareStart(at(10 * time.Second)),
		shareStop(epoch),
		ev(epoch, entities.EventTypeActiveSpeaker, "alice", ""),
		ev(at(25*time.Second), entities.EventTypeActiveSpeaker, "bob", ""),
		ev(at(30*time.Second), entities.EventTypeCaptureEnded, "", ""),
	}, window(30*time.Second))

	if ann.Corrected != 2 {
		t.Fatalf("expected 2 corrected events, got %d", ann.Corrected)
	}
	assertIntervals(t, ann.Intervals,
		Interval{entities.SegmentKindPlain, at(0), at(10 * time.Second)},
		Interval{entities.SegmentKindOverlay, at(10 * time.Second), at(25 * time.Second)},
		Interval{entities.SegmentKindPlain, at(25 * time.Second), at(30 * time.Second)},
	)
	// the corrected speaker turn keeps its arrival position among equal times
	if len(ann.Turns) != 2 || ann.Turns[0].AttendeeID != "alice" || !ann.Turns[0].At.Equal(at(25*time.Second)) {
		t.Errorf("unexpected turns %+v", ann.Turns)
	}
	if ann.Turns[0].Style != entities.CueStylePlain {
		t.Errorf("turn after corrected stop should be plain, got %s", ann.Turns[0].Style)
	}
}

func TestAnnotate_SkewWithoutLaterEventUsesWindowEnd(t *testing.T) {
	t.Parallel()

	ann := Annotate([]entities.Event{
		shareStart(at(2 * time.Second)),
		shareStop(time.Unix(0, 0).UTC()),
	}, window(10*time.Second))

	assertIntervals(t, ann.Intervals,
		Interval{entities.SegmentKindPlain, at(0), at(2 * time.Second)},
		Interval{entities.SegmentKindOverlay, at(2 * time.Second), at(10 * time.Second)},
		Interval{entities.SegmentKindPlain, at(10 * time.Second), at(10 * time.Second)},
	)
}

func TestAnnotate_SortsByEffectiveTime(t *testing.T) {
	t.Parallel()

	ann := Annotate([]entities.Event{
		ev(at(3*time.Second), entities.EventTypeActiveSpeaker, "carol", ""),
		ev(at(time.Second), entities.EventTypeActiveSpeaker, "alice", ""),
		ev(at(2*time.Second), entities.EventTypeActiveSpeaker, "bob", ""),
	}, window(5*time.Second))

	var order []string
	for _, turn := range ann.Turns {
		order = append(order, turn.AttendeeID)
	}
	if len(order) != 3 || order[0] != "alice" || order[1] != "bob" || order[2] != "carol" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestAnnotate_IntervalsPartitionWindow(t *testing.T) {
	t.Parallel()

	w := window(time.Minute)
	ann := Annotate([]entities.Event{
		shareStart(at(5 * time.Second)),
		shareStop(at(15 * time.Second)),
		shareStart(at(20 * time.Second)),
		shareStop(at(2 * time.Minute)),
	}, w)

	cursor := w.Start
	for i, iv := range ann.Intervals {
		if !iv.Start.Equal(cursor) {
			t.Fatalf("interval %d starts at %v, expected %v", i, iv.Start, cursor)
		}
		if iv.End.Before(iv.Start) {
			t.Fatalf("interval %d is inverted", i)
		}
		cursor = iv.End
	}
	if !cursor.Equal(w.End) {
		t.Fatalf("intervals end at %v, expected %v", cursor, w.End)
	}
}
