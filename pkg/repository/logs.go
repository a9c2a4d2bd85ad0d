package repository

import (
	"log"
	"strings"
	"sync"

	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
	"tableflip.dev/lifelog/pkg/store"
)

// Logs owns the active log state.
type Logs struct {
	base

	mu   sync.Mutex
	logs entry.Logs
}

// NewLogs loads the active logs stored under key.
func NewLogs(s store.Store, key string, logger *log.Logger) *Logs {
	r := &Logs{base: newBase(s, key, logger)}
	r.Reload()
	return r
}

// Reload discards the in-memory state and reads it again from the store.
func (r *Logs) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	logs := store.Load[entry.Logs](r.store, r.key, r.logger)
	if logs == nil {
		logs = entry.Logs{}
	}
	r.logs = logs
}

// Add appends a note to cat. when defaults to now; a blank activity or an
// unparseable when is rejected with a nil entry and nothing is written.
func (r *Logs) Add(cat category.Key, activity, when string) (*entry.LogEntry, error) {
	if strings.TrimSpace(activity) == "" {
		return nil, nil
	}
	when = strings.TrimSpace(when)
	if when == "" {
		when = entry.FormatTime(r.now())
	} else if !entry.ValidTime(when) {
		return nil, nil
	}
	e := entry.New(activity, when)

	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.logs.Clone()
	next[cat] = append(next[cat], e)
	if err := store.Save(r.store, r.key, next); err != nil {
		return nil, err
	}
	r.logs = next
	return &e, nil
}

// Delete removes the entry id from cat. It reports false, and writes
// nothing, when there is no such entry.
func (r *Logs) Delete(cat category.Key, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOfEntry(r.logs[cat], id)
	if i < 0 {
		return false, nil
	}
	next := r.logs.Clone()
	list := next[cat]
	next[cat] = append(list[:i:i], list[i+1:]...)
	if err := store.Save(r.store, r.key, next); err != nil {
		return false, err
	}
	r.logs = next
	return true, nil
}

// ReplaceAll overwrites the active state with a copy of logs.
func (r *Logs) ReplaceAll(logs entry.Logs) error {
	next := logs.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := store.Save(r.store, r.key, next); err != nil {
		return err
	}
	r.logs = next
	return nil
}

// All returns a copy of the active state.
func (r *Logs) All() entry.Logs {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs.Clone()
}

// For returns a copy of the entries of cat in insertion order.
func (r *Logs) For(cat category.Key) []entry.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entry.LogEntry, len(r.logs[cat]))
	copy(out, r.logs[cat])
	return out
}

// Empty reports whether no category holds an entry.
func (r *Logs) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs.Empty()
}

func indexOfEntry(list []entry.LogEntry, id string) int {
	for i, e := range list {
		if e.ID == id {
			return i
		}
	}
	return -1
}
