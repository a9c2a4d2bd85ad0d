// Package archive models snapshots of the active log state.
package archive

import (
	"errors"
	"time"

	"tableflip.dev/lifelog/pkg/entry"
)

// ErrNotFound is returned when no archive carries the requested id.
var ErrNotFound = errors.New("archive: not found")

// Item is an immutable copy of the active logs at Timestamp.
type Item struct {
	ID        string     `json:"id"`
	Timestamp string     `json:"timestamp"`
	Logs      entry.Logs `json:"logs"`
}

// List is ordered newest first.
type List []Item

// New snapshots logs. The payload is deep copied.
func New(logs entry.Logs, at time.Time) Item {
	return Item{
		ID:        entry.NewID(),
		Timestamp: entry.FormatTime(at),
		Logs:      logs.Clone(),
	}
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	it.Logs = it.Logs.Clone()
	return it
}

// Summary counts categories with entries and total entries.
func (it Item) Summary() (categories, entries int) {
	return len(it.Logs.Categories()), it.Logs.Count()
}

// Clone returns a deep copy of every item.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	for i, it := range l {
		out[i] = it.Clone()
	}
	return out
}

// Find returns the index of id, or -1.
func (l List) Find(id string) int {
	for i, it := range l {
		if it.ID == id {
			return i
		}
	}
	return -1
}
