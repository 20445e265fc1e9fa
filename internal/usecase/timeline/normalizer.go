package timeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// maxParallelSources bounds the number of event sources parsed at once
const maxParallelSources = 8

// EventSource is the raw content of one event-log chunk
type EventSource struct {
	Name string
	Data []byte
}

// ParseFailure describes an event record that could not be decoded and was dropped
type ParseFailure struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	Offset int    `json:"offset"`
	Err    error  `json:"-"`
}

// Error implements error interface
func (f ParseFailure) Error() string {
	return fmt.Sprintf("event log %s: record %d at offset %d: %v", f.Source, f.Index, f.Offset, f.Err)
}

// Unwrap returns the decoding error
func (f ParseFailure) Unwrap() error {
	return f.Err
}

// MarshalJSON includes the error message
func (f ParseFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Source string `json:"source"`
		Index  int    `json:"index"`
		Offset int    `json:"offset"`
		Error  string `json:"error"`
	}{f.Source, f.Index, f.Offset, msg})
}

// EventLog is the normalized event stream of one capture
type EventLog struct {
	// Events in arrival order: sources concatenated in capture order
	Events   []entities.Event
	Window   entities.RecordingWindow
	Failures []ParseFailure
	// Restarts counts capture restarts inside the stream; they do not move the window
	Restarts int
}

type wireEvent struct {
	Timestamp       json.RawMessage `json:"Timestamp"`
	EventType       string          `json:"EventType"`
	EventParameters *struct {
		AttendeeID    string `json:"AttendeeId"`
		MediaModality string `json:"MediaModality"`
	} `json:"EventParameters"`
}

type span struct {
	offset int
	text   []byte
}

// splitSpans cuts raw text into top-level {...} spans. Braces inside JSON strings
// are ignored. An object still open at end of input is returned as a trailing span.
// A '{' that cannot open a value (not after ':', '[' or ',') starts a new record,
// so a record missing its closing braces does not swallow the ones after it.
func splitSpans(data []byte) []span {
	var (
		spans    []span
		depth    int
		start    = -1
		inString bool
		escaped  bool
		prev     byte
	)

	for i, b := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
				prev = b
			}
			continue
		}

		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth > 0 && prev != ':' && prev != '[' && prev != ',' {
				spans = append(spans, span{offset: start, text: data[start:i]})
				depth = 0
			}
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				break
			}
			depth--
			if depth == 0 {
				spans = append(spans, span{offset: start, text: data[start : i+1]})
				start = -1
			}
		}
		prev = b
	}

	if depth > 0 && start >= 0 {
		spans = append(spans, span{offset: start, text: data[start:]})
	}

	return spans
}

// decodeSpan parses one record. Chunks are sometimes cut short by exactly one
// closing brace, so a failed record is retried once with "}" appended.
func decodeSpan(text []byte) (wireEvent, error) {
	var w wireEvent
	err := json.Unmarshal(text, &w)
	if err == nil {
		return w, nil
	}

	retry := make([]byte, 0, len(text)+1)
	retry = append(retry, text...)
	retry = append(retry, '}')

	w = wireEvent{}
	if retryErr := json.Unmarshal(retry, &w); retryErr != nil {
		return wireEvent{}, fmt.Errorf("invalid event record: %w", err)
	}
	return w, nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 {
		return time.Time{}, errors.New("missing Timestamp")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid Timestamp %q: %w", s, err)
		}
		// event clocks have millisecond precision
		return t.UTC().Truncate(time.Millisecond), nil
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid Timestamp %s", string(raw))
}

func toEvent(w wireEvent, source, index int) (entities.Event, error) {
	if w.EventType == "" {
		return entities.Event{}, errors.New("missing EventType")
	}

	ts, err := parseTimestamp(w.Timestamp)
	if err != nil {
		return entities.Event{}, err
	}

	ev := entities.Event{
		Type:      entities.EventType(w.EventType),
		Timestamp: ts,
		Source:    source,
		Index:     index,
	}
	if w.EventParameters != nil {
		ev.AttendeeID = w.EventParameters.AttendeeID
		ev.MediaModality = entities.MediaModality(w.EventParameters.MediaModality)
	}
	return ev, nil
}

// ParseEventLog extracts every event record of one source.
// Undecodable records are dropped and reported, never fatal.
func ParseEventLog(src EventSource, sourceIndex int) ([]entities.Event, []ParseFailure) {
	var (
		events   []entities.Event
		failures []ParseFailure
	)

	for i, sp := range splitSpans(src.Data) {
		w, err := decodeSpan(sp.text)
		if err == nil {
			var ev entities.Event
			ev, err = toEvent(w, sourceIndex, i)
			if err == nil {
				events = append(events, ev)
				continue
			}
		}

		failures = append(failures, ParseFailure{
			Source: src.Name,
			Index:  i,
			Offset: sp.offset,
			Err:    err,
		})
	}

	return events, failures
}

func firstOfType(events []entities.Event, t entities.EventType) (entities.Event, bool) {
	for _, ev := range events {
		if ev.Type == t {
			return ev, true
		}
	}
	return entities.Event{}, false
}

// Normalize parses all sources (in parallel) and derives the recording window:
// the first CaptureStarted of the first source and the first CaptureEnded of the last.
func Normalize(ctx context.Context, sources []EventSource) (*EventLog, error) {
	if len(sources) == 0 {
		return nil, entities.ErrNoEventSources
	}

	perSource := make([][]entities.Event, len(sources))
	perFailures := make([][]ParseFailure, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelSources)
	for i := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perSource[i], perFailures[i] = ParseEventLog(sources[i], i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to parse event sources: %w", err)
	}

	first, last := 0, len(sources)-1
	started, ok := firstOfType(perSource[first], entities.EventTypeCaptureStarted)
	if !ok {
		return nil, fmt.Errorf("event log %s: %w", sources[first].Name, entities.ErrMissingCaptureStart)
	}
	ended, ok := firstOfType(perSource[last], entities.EventTypeCaptureEnded)
	if !ok {
		return nil, fmt.Errorf("event log %s: %w", sources[last].Name, entities.ErrMissingCaptureEnd)
	}
	if ended.Timestamp.Before(started.Timestamp) {
		return nil, fmt.Errorf("window %s - %s: %w",
			started.Timestamp.Format(time.RFC3339Nano), ended.Timestamp.Format(time.RFC3339Nano), entities.ErrInvalidWindow)
	}

	log := &EventLog{
		Window: entities.RecordingWindow{Start: started.Timestamp, End: ended.Timestamp},
	}

	starts := 0
	for i := range sources {
		for _, ev := range perSource[i] {
			if ev.Type == entities.EventTypeCaptureStarted {
				starts++
			}
		}
		log.Events = append(log.Events, perSource[i]...)
		log.Failures = append(log.Failures, perFailures[i]...)
	}
	if starts > 1 {
		log.Restarts = starts - 1
	}

	return log, nil
}
