// Package entry holds the log entry model and the active log state.
package entry

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"tableflip.dev/lifelog/pkg/category"
)

// LogEntry is a dated free-text note. Entries are never edited in place.
type LogEntry struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Activity string `json:"activity"`
}

// Logs maps each category to its entries in insertion order. A missing
// key reads the same as an empty sequence.
type Logs map[category.Key][]LogEntry

// New builds an entry with a fresh id. It does not validate.
func New(activity, date string) LogEntry {
	return LogEntry{
		ID:       NewID(),
		Date:     date,
		Activity: strings.TrimSpace(activity),
	}
}

// NewID returns a unique, time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Clone returns a deep copy. Empty sequences stay empty, nil stays nil.
func (l Logs) Clone() Logs {
	if l == nil {
		return Logs{}
	}
	out := make(Logs, len(l))
	for k, entries := range l {
		if entries == nil {
			out[k] = nil
			continue
		}
		cp := make([]LogEntry, len(entries))
		copy(cp, entries)
		out[k] = cp
	}
	return out
}

// Count is the number of entries across all categories.
func (l Logs) Count() int {
	n := 0
	for _, entries := range l {
		n += len(entries)
	}
	return n
}

// Empty reports whether no category holds an entry.
func (l Logs) Empty() bool {
	return l.Count() == 0
}

// Categories returns the keys holding at least one entry.
func (l Logs) Categories() []category.Key {
	keys := make([]category.Key, 0, len(l))
	for k, entries := range l {
		if len(entries) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// SortedByDate returns a copy of entries ordered by Date, oldest first.
// Entries with equal or unparseable dates keep their relative order.
func SortedByDate(entries []LogEntry) []LogEntry {
	out := make([]LogEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		lt, lerr := ParseTime(out[i].Date)
		rt, rerr := ParseTime(out[j].Date)
		switch {
		case lerr != nil || rerr != nil:
			return false
		default:
			return lt.Before(rt)
		}
	})
	return out
}
