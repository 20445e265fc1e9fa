package timeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseChunkTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    time.Time
		wantErr bool
	}{
		{"2021-03-04-10-00-05-123.webm", time.Date(2021, 3, 4, 10, 0, 5, 123e6, time.UTC), false},
		{"2021-03-04-10-00-05-5.mp4", time.Date(2021, 3, 4, 10, 0, 5, 500e6, time.UTC), false},
		{"/captures/m/audio/2021-03-04-10-00-05-000.mp4", time.Date(2021, 3, 4, 10, 0, 5, 0, time.UTC), false},
		{"meeting-2021-03-04-10-00-05-250.mp4", time.Date(2021, 3, 4, 10, 0, 5, 250e6, time.UTC), false},
		{"2021-03-04-10-00-05-123", time.Date(2021, 3, 4, 10, 0, 5, 123e6, time.UTC), false},
		{"2021-13-04-10-00-05-123.mp4", time.Time{}, true},
		{"2021-03-04-10-00-xx-123.mp4", time.Time{}, true},
		{"2021-03-04.mp4", time.Time{}, true},
		{"notes.txt", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChunkTimestamp(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestScanChunkDir_SortsAndSkips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeChunks(t, dir, at(3*time.Second), at(time.Second), at(2*time.Second))
	if err := os.WriteFile(filepath.Join(dir, "README.md"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "2021-03-04-10-00-09-000"), 0o755); err != nil {
		t.Fatal(err)
	}

	idx, err := ScanChunkDir(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("expected 3 chunks, got %d", idx.Len())
	}
	for i, want := range []time.Time{at(time.Second), at(2 * time.Second), at(3 * time.Second)} {
		if !idx.Chunks[i].Timestamp.Equal(want) {
			t.Errorf("chunk %d: expected %v, got %v", i, want, idx.Chunks[i].Timestamp)
		}
		if idx.Chunks[i].Path != filepath.Join(dir, idx.Chunks[i].Name) {
			t.Errorf("chunk %d: unexpected path %s", i, idx.Chunks[i].Path)
		}
	}
	if len(idx.Skipped) != 1 || idx.Skipped[0] != "README.md" {
		t.Errorf("unexpected skipped %v", idx.Skipped)
	}
}

func TestScanChunkDir_MissingDirIsEmpty(t *testing.T) {
	t.Parallel()

	idx, err := ScanChunkDir(filepath.Join(t.TempDir(), "video"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 0 {
		t.Fatalf("expected empty index, got %d chunks", idx.Len())
	}
	if got := idx.Match(at(0), at(time.Hour)); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil match, got %v", got)
	}
}

func TestChunkIndex_MatchIsStrictAndIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeChunks(t, dir, at(0), at(time.Second), at(2*time.Second), at(3*time.Second))

	idx, err := ScanChunkDir(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	first := idx.Match(at(0), at(3*time.Second))
	if len(first) != 2 {
		t.Fatalf("expected 2 chunks strictly inside, got %d", len(first))
	}
	if !first[0].Timestamp.Equal(at(time.Second)) || !first[1].Timestamp.Equal(at(2*time.Second)) {
		t.Errorf("unexpected match %v", first)
	}

	first[0].Name = "mutated"
	second := idx.Match(at(0), at(3*time.Second))
	if second[0].Name == "mutated" {
		t.Error("match result aliases the index")
	}
	if len(second) != 2 || second[1].Path != first[1].Path {
		t.Errorf("match is not idempotent: %v vs %v", first, second)
	}

	if got := idx.Match(at(3*time.Second), at(time.Second)); len(got) != 0 {
		t.Errorf("inverted interval matched %v", got)
	}
}

func TestMatchChunks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeChunks(t, dir, at(time.Second), at(5*time.Second))

	got, err := MatchChunks(dir, at(0), at(2*time.Second))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(at(time.Second)) {
		t.Fatalf("unexpected chunks %v", got)
	}
}
