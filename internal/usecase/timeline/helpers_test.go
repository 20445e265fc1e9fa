package timeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

var t0 = time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time {
	return t0.Add(d)
}

func record(ts time.Time, typ entities.EventType, attendee string, modality entities.MediaModality) string {
	params := map[string]string{}
	if attendee != "" {
		params["AttendeeId"] = attendee
	}
	if modality != "" {
		params["MediaModality"] = string(modality)
	}
	b, _ := json.Marshal(map[string]any{
		"Timestamp":       ts.Format(time.RFC3339Nano),
		"EventType":       string(typ),
		"EventParameters": params,
	})
	return string(b)
}

func source(name string, records ...string) EventSource {
	return EventSource{Name: name, Data: []byte(strings.Join(records, ""))}
}

func chunkName(ts time.Time, ext string) string {
	return ts.Format("2006-01-02-15-04-05") + "-" + ts.Format(".000")[1:] + ext
}

func writeChunks(t *testing.T, dir string, times ...time.Time) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, ts := range times {
		if err := os.WriteFile(filepath.Join(dir, chunkName(ts, ".webm")), []byte("x"), 0o644); err != nil {
			t.Fatalf("write chunk: %v", err)
		}
	}
}

func events(t *testing.T, sources ...EventSource) *EventLog {
	t.Helper()
	log, err := Normalize(t.Context(), sources)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return log
}
