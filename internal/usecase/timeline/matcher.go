package timeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// chunkNameFields is the number of trailing dash-separated fields of a chunk name:
// year, month, day, hour, minute, second, sub-second
const chunkNameFields = 7

// ChunkIndex is the sorted listing of one chunk directory
type ChunkIndex struct {
	Dir     string
	Chunks  []entities.ChunkRef
	Skipped []string
}

// ParseChunkTimestamp decodes a chunk file name such as 2021-03-04-10-00-05-123.mp4.
// The sub-second field is a decimal fraction, so "5" is 500ms and "123" is 123ms.
func ParseChunkTimestamp(name string) (time.Time, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	fields := strings.Split(base, "-")
	if len(fields) < chunkNameFields {
		return time.Time{}, fmt.Errorf("chunk name %q: expected %d timestamp fields", name, chunkNameFields)
	}
	fields = fields[len(fields)-chunkNameFields:]

	var parts [chunkNameFields - 1]int
	for i := range parts {
		n, err := parseDigits(fields[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("chunk name %q: field %d: %w", name, i, err)
		}
		parts[i] = n
	}

	frac := fields[chunkNameFields-1]
	if len(frac) > 9 {
		return time.Time{}, fmt.Errorf("chunk name %q: sub-second field too long", name)
	}
	n, err := parseDigits(frac)
	if err != nil {
		return time.Time{}, fmt.Errorf("chunk name %q: sub-second field: %w", name, err)
	}
	nanos := n
	for i := len(frac); i < 9; i++ {
		nanos *= 10
	}

	year, month, day, hour, minute, second := parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]
	t := time.Date(year, time.Month(month), day, hour, minute, second, nanos, time.UTC)

	// time.Date normalizes out of range values, reject them instead
	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, fmt.Errorf("chunk name %q: timestamp out of range", name)
	}

	return t, nil
}

func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty field")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric field %q", s)
		}
	}
	return strconv.Atoi(s)
}

// ScanChunkDir lists dir once and returns its chunks sorted by timestamp.
// A missing directory yields an empty index.
func ScanChunkDir(dir string) (*ChunkIndex, error) {
	idx := &ChunkIndex{Dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return nil, fmt.Errorf("failed to list chunk dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, err := ParseChunkTimestamp(entry.Name())
		if err != nil {
			idx.Skipped = append(idx.Skipped, entry.Name())
			continue
		}
		idx.Chunks = append(idx.Chunks, entities.ChunkRef{
			Path:      filepath.Join(dir, entry.Name()),
			Name:      entry.Name(),
			Timestamp: ts,
		})
	}

	slices.SortStableFunc(idx.Chunks, func(a, b entities.ChunkRef) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	return idx, nil
}

// Match returns the chunks strictly inside (start, end), in timestamp order.
// The result never aliases the index.
func (idx *ChunkIndex) Match(start, end time.Time) []entities.ChunkRef {
	matched := []entities.ChunkRef{}
	if idx == nil || !start.Before(end) {
		return matched
	}

	i := sort.Search(len(idx.Chunks), func(i int) bool {
		return idx.Chunks[i].Timestamp.After(start)
	})
	for ; i < len(idx.Chunks) && idx.Chunks[i].Timestamp.Before(end); i++ {
		matched = append(matched, idx.Chunks[i])
	}
	return matched
}

// Len returns the number of decodable chunks
func (idx *ChunkIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Chunks)
}

// MatchChunks scans dir and returns the chunks inside (start, end)
func MatchChunks(dir string, start, end time.Time) ([]entities.ChunkRef, error) {
	idx, err := ScanChunkDir(dir)
	if err != nil {
		return nil, err
	}
	return idx.Match(start, end), nil
}
