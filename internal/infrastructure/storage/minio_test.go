package storage

import (
	"path/filepath"
	"testing"
)

func TestLocalPath(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "captures")
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"captures/m1/audio/2021-03-04-10-00-05-123.mp4", filepath.Join(dir, "audio", "2021-03-04-10-00-05-123.mp4"), false},
		{"captures/m1/meeting-events/a.txt", filepath.Join(dir, "meeting-events", "a.txt"), false},
		{"captures/m1/../../etc/passwd", filepath.Join(dir, "etc", "passwd"), false},
		{"captures/m1/", "", true},
	}

	for _, tt := range tests {
		got, err := LocalPath(dir, "captures/m1", tt.key)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got %s", tt.key, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.key, tt.want, got)
		}
	}
}
