// Package alert models deadline tasks and the overdue predicate.
package alert

import (
	"strings"
	"time"

	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
)

// Alert is a task with a deadline. Done only ever moves from false to true.
type Alert struct {
	ID       string `json:"id"`
	Task     string `json:"task"`
	Deadline string `json:"deadline"`
	Done     bool   `json:"done"`
}

// Alerts maps each category to its alerts in insertion order.
type Alerts map[category.Key][]Alert

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// New builds an open alert with a fresh id.
func New(task, deadline string) Alert {
	return Alert{
		ID:       entry.NewID(),
		Task:     strings.TrimSpace(task),
		Deadline: strings.TrimSpace(deadline),
	}
}

// Overdue is true when a is still open and its deadline is strictly
// before now. An unparseable deadline is never overdue.
func (a Alert) Overdue(now time.Time) bool {
	if a.Done {
		return false
	}
	d, err := entry.ParseTime(a.Deadline)
	if err != nil {
		return false
	}
	return d.Before(now)
}

// DueWithin is true when a is open, not yet overdue, and due within
// window of now.
func (a Alert) DueWithin(now time.Time, window time.Duration) bool {
	if a.Done {
		return false
	}
	d, err := entry.ParseTime(a.Deadline)
	if err != nil || d.Before(now) {
		return false
	}
	return !d.After(now.Add(window))
}

// AnyOverdue reports whether some alert in list is overdue at now.
func AnyOverdue(list []Alert, now time.Time) bool {
	for _, a := range list {
		if a.Overdue(now) {
			return true
		}
	}
	return false
}

// Deadline combines a YYYY-MM-DD date and an HH:MM time of day in loc
// into one canonical instant. Both parts are required.
func Deadline(date, clock string, loc *time.Location) (string, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return "", false
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return "", false
	}
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return "", false
	}
	at := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
	return entry.FormatTime(at), true
}

// Clone returns a deep copy. Empty sequences stay empty, nil stays nil.
func (m Alerts) Clone() Alerts {
	if m == nil {
		return Alerts{}
	}
	out := make(Alerts, len(m))
	for k, list := range m {
		if list == nil {
			out[k] = nil
			continue
		}
		cp := make([]Alert, len(list))
		copy(cp, list)
		out[k] = cp
	}
	return out
}

// Count is the number of alerts across all categories.
func (m Alerts) Count() int {
	n := 0
	for _, list := range m {
		n += len(list)
	}
	return n
}
