package repository

import (
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"tableflip.dev/lifelog/pkg/alert"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
	"tableflip.dev/lifelog/pkg/store"
)

// Alerts owns the deadline tasks of every category.
type Alerts struct {
	base

	mu     sync.Mutex
	alerts alert.Alerts
}

// NewAlerts loads the alerts stored under key.
func NewAlerts(s store.Store, key string, logger *log.Logger) *Alerts {
	r := &Alerts{base: newBase(s, key, logger)}
	r.Reload()
	return r
}

// Reload discards the in-memory alerts and reads them again from the store.
func (r *Alerts) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	alerts := store.Load[alert.Alerts](r.store, r.key, r.logger)
	if alerts == nil {
		alerts = alert.Alerts{}
	}
	r.alerts = alerts
}

// Add appends an open alert to cat. A blank task or a missing or
// unparseable deadline is rejected with a nil alert and nothing written.
func (r *Alerts) Add(cat category.Key, task, deadline string) (*alert.Alert, error) {
	if strings.TrimSpace(task) == "" || !entry.ValidTime(deadline) {
		return nil, nil
	}
	a := alert.New(task, deadline)

	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.alerts.Clone()
	next[cat] = append(next[cat], a)
	if err := store.Save(r.store, r.key, next); err != nil {
		return nil, err
	}
	r.alerts = next
	return &a, nil
}

// Complete marks alert id in cat done. An absent id reports false; an
// already completed alert reports true. Neither writes.
func (r *Alerts) Complete(cat category.Key, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOfAlert(r.alerts[cat], id)
	if i < 0 {
		return false, nil
	}
	if r.alerts[cat][i].Done {
		return true, nil
	}
	next := r.alerts.Clone()
	next[cat][i].Done = true
	if err := store.Save(r.store, r.key, next); err != nil {
		return false, err
	}
	r.alerts = next
	return true, nil
}

// Delete removes alert id from cat. It reports false, and writes nothing,
// when there is no such alert.
func (r *Alerts) Delete(cat category.Key, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := indexOfAlert(r.alerts[cat], id)
	if i < 0 {
		return false, nil
	}
	next := r.alerts.Clone()
	list := next[cat]
	next[cat] = append(list[:i:i], list[i+1:]...)
	if err := store.Save(r.store, r.key, next); err != nil {
		return false, err
	}
	r.alerts = next
	return true, nil
}

// IsOverdue reports whether cat has an open alert whose deadline is
// strictly before now.
func (r *Alerts) IsOverdue(cat category.Key, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return alert.AnyOverdue(r.alerts[cat], now)
}

// OverdueCategories lists, in display order, the categories overdue at now.
func (r *Alerts) OverdueCategories(now time.Time) []category.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []category.Key{}
	for _, k := range category.Keys() {
		if alert.AnyOverdue(r.alerts[k], now) {
			out = append(out, k)
		}
	}
	return out
}

// Upcoming is an open alert due within a window, with its category.
type Upcoming struct {
	Category category.Key
	Alert    alert.Alert
}

// DueWithin lists open alerts due between now and now+window, soonest
// first.
func (r *Alerts) DueWithin(now time.Time, window time.Duration) []Upcoming {
	r.mu.Lock()
	var out []Upcoming
	for _, k := range category.Keys() {
		for _, a := range r.alerts[k] {
			if a.DueWithin(now, window) {
				out = append(out, Upcoming{Category: k, Alert: a})
			}
		}
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		di, _ := entry.ParseTime(out[i].Alert.Deadline)
		dj, _ := entry.ParseTime(out[j].Alert.Deadline)
		return di.Before(dj)
	})
	return out
}

// All returns a copy of every alert.
func (r *Alerts) All() alert.Alerts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alerts.Clone()
}

func indexOfAlert(list []alert.Alert, id string) int {
	for i, a := range list {
		if a.ID == id {
			return i
		}
	}
	return -1
}
