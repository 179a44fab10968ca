// Package persist keeps the local edit buffer, the document store and
// durable storage in step.
//
// Syncer pushes local edits into the store through a debounce and adopts
// content injected into the store from elsewhere. Manager saves and loads
// snapshots, either on request or from the auto-save timer.
package persist

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotVersion is the wire format version written by this package.
const SnapshotVersion = "1.0"

// DefaultSnapshotKey is the storage key snapshots are written under.
const DefaultSnapshotKey = "deckstorm.document"

// Snapshot is a persisted copy of document content.
type Snapshot struct {
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Version   string `json:"version"`
}

// NewSnapshot creates a snapshot taken at t.
func NewSnapshot(content string, t time.Time) Snapshot {
	return Snapshot{
		Content:   content,
		Timestamp: t.UnixMilli(),
		Version:   SnapshotVersion,
	}
}

// saveTime rounds t up to the millisecond resolution of the wire format,
// so a restored timestamp is never earlier than the save.
func saveTime(t time.Time) time.Time {
	r := t.Truncate(time.Millisecond)
	if r.Before(t) {
		r = r.Add(time.Millisecond)
	}
	return r
}

// Time returns the snapshot timestamp.
func (s Snapshot) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Encode returns the JSON wire form.
func (s Snapshot) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(data), nil
}

// DecodeSnapshot parses the JSON wire form.
func DecodeSnapshot(raw string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return s, nil
}

// Loaded is the result of reading the persisted snapshot.
type Loaded struct {
	Content   string
	Timestamp time.Time
	HasData   bool
}
