package timeline

import (
	"testing"
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

const ms = time.Millisecond

func plain(start, end time.Duration, text string) entities.Cue {
	return entities.Cue{Start: start, End: end, Text: text, Style: entities.CueStylePlain}
}

func overlay(start, end time.Duration, text string) entities.Cue {
	return entities.Cue{Start: start, End: end, Text: text, Style: entities.CueStyleOverlay}
}

func assertCues(t *testing.T, got []entities.Cue, want ...entities.Cue) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d cues, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cue %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestCaptionText(t *testing.T) {
	t.Parallel()

	if got := CaptionText("alice", entities.CueStylePlain); got != "alice talking" {
		t.Errorf("unexpected plain caption %q", got)
	}
	if got := CaptionText("alice", entities.CueStyleOverlay); got != "alice" {
		t.Errorf("unexpected overlay caption %q", got)
	}
	if got := CaptionText("", entities.CueStylePlain); got != "" {
		t.Errorf("unknown speaker should have empty caption, got %q", got)
	}
}

func TestGenerateCues(t *testing.T) {
	t.Parallel()

	speakers := entities.SpeakerDirectory{"a1": "alice", "b1": "bob"}
	cues := GenerateCues([]SpeakerTurn{
		{At: at(time.Second), AttendeeID: "a1", Style: entities.CueStylePlain},
		{At: at(4 * time.Second), AttendeeID: "b1", Style: entities.CueStyleOverlay},
		{At: at(6 * time.Second), AttendeeID: "zz", Style: entities.CueStylePlain},
	}, window(10*time.Second), speakers)

	assertCues(t, cues,
		plain(time.Second, 4*time.Second, "alice talking"),
		overlay(4*time.Second, 6*time.Second, "bob"),
		plain(6*time.Second, 10*time.Second, ""),
	)
}

func TestGenerateCues_NoTurns(t *testing.T) {
	t.Parallel()

	if cues := GenerateCues(nil, window(time.Second), nil); len(cues) != 0 {
		t.Fatalf("expected no cues, got %v", cues)
	}
}

func TestRepairTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []entities.Cue
		want []entities.Cue
	}{
		{
			name: "same style untouched",
			in:   []entities.Cue{plain(0, 5000*ms, "a"), plain(5000*ms, 9000*ms, "b")},
			want: []entities.Cue{plain(0, 5000*ms, "a"), plain(5000*ms, 9000*ms, "b")},
		},
		{
			name: "gap over a second untouched",
			in:   []entities.Cue{plain(0, 5000*ms, "a"), overlay(6500*ms, 9000*ms, "b")},
			want: []entities.Cue{plain(0, 5000*ms, "a"), overlay(6500*ms, 9000*ms, "b")},
		},
		{
			name: "gap of exactly a second is repaired",
			in:   []entities.Cue{plain(0, 5000*ms, "a"), overlay(6000*ms, 9000*ms, "b")},
			want: []entities.Cue{plain(0, 4800*ms, "a"), overlay(6800*ms, 9000*ms, "b")},
		},
		{
			name: "trim and delay",
			in:   []entities.Cue{plain(0, 5000*ms, "a"), overlay(5000*ms, 9000*ms, "b")},
			want: []entities.Cue{plain(0, 4800*ms, "a"), overlay(5800*ms, 9000*ms, "b")},
		},
		{
			name: "dropped cue carries to last survivor",
			in: []entities.Cue{
				plain(0, 5000*ms, "a"),
				overlay(5000*ms, 5500*ms, "b"),
				overlay(5500*ms, 9000*ms, "c"),
			},
			want: []entities.Cue{plain(0, 4800*ms, "a"), overlay(5800*ms, 9000*ms, "c")},
		},
		{
			name: "run resets after clean transition",
			in: []entities.Cue{
				plain(0, 5000*ms, "a"),
				overlay(5000*ms, 5500*ms, "b"),
				overlay(5500*ms, 9000*ms, "c"),
				plain(9000*ms, 12000*ms, "d"),
			},
			want: []entities.Cue{
				plain(0, 4800*ms, "a"),
				overlay(5800*ms, 8800*ms, "c"),
				plain(9800*ms, 12000*ms, "d"),
			},
		},
		{
			name: "same style cue keeps the run",
			in: []entities.Cue{
				plain(0, 5000*ms, "a"),
				overlay(5000*ms, 5500*ms, "b"),
				plain(5500*ms, 6000*ms, "c"),
				overlay(6000*ms, 9000*ms, "d"),
			},
			want: []entities.Cue{
				plain(0, 4800*ms, "a"),
				plain(5500*ms, 6000*ms, "c"),
				overlay(7000*ms, 9000*ms, "d"),
			},
		},
		{
			name: "cue trimmed to nothing is removed",
			in:   []entities.Cue{plain(0, 100*ms, "a"), overlay(100*ms, 5000*ms, "b")},
			want: []entities.Cue{overlay(900*ms, 5000*ms, "b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCues(t, RepairTransitions(tt.in), tt.want...)
		})
	}
}

func TestRepairTransitions_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	in := []entities.Cue{plain(0, 5000*ms, "a"), overlay(5000*ms, 9000*ms, "b")}
	RepairTransitions(in)
	if in[0].End != 5000*ms || in[1].Start != 5000*ms {
		t.Fatalf("input modified: %+v", in)
	}
}

func TestRepairTransitions_OutputIsOrdered(t *testing.T) {
	t.Parallel()

	var in []entities.Cue
	style := []entities.CueStyle{entities.CueStylePlain, entities.CueStyleOverlay}
	for i := 0; i < 40; i++ {
		start := time.Duration(i*700) * ms
		in = append(in, entities.Cue{Start: start, End: start + 700*ms, Style: style[(i/2)%2]})
	}

	out := RepairTransitions(in)
	for i, c := range out {
		if c.Start >= c.End {
			t.Fatalf("cue %d has no duration: %+v", i, c)
		}
		if i > 0 && out[i-1].End > c.Start {
			t.Fatalf("cue %d overlaps previous: %+v %+v", i, out[i-1], c)
		}
	}
}
