package app

import (
	"time"

	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
)

// ReportSection groups the entries of one category.
type ReportSection struct {
	Category category.Key     `json:"category"`
	Entries  []entry.LogEntry `json:"entries"`
}

// ReportResult holds the active entries dated within a window.
type ReportResult struct {
	Since    time.Time       `json:"since"`
	Until    time.Time       `json:"until"`
	Sections []ReportSection `json:"sections"`
	Total    int             `json:"total"`
}

// Report returns the active entries dated between since and until,
// inclusive, grouped by category in display order and sorted by date.
// Entries with unparseable dates are left out.
func (s *Service) Report(since, until time.Time) ReportResult {
	if since.After(until) {
		since, until = until, since
	}
	logs := s.logs.All()

	res := ReportResult{Since: since, Until: until}
	for _, cat := range category.Keys() {
		var picked []entry.LogEntry
		for _, e := range logs[cat] {
			at, err := entry.ParseTime(e.Date)
			if err != nil || at.Before(since) || at.After(until) {
				continue
			}
			picked = append(picked, e)
		}
		if len(picked) == 0 {
			continue
		}
		res.Sections = append(res.Sections, ReportSection{
			Category: cat,
			Entries:  entry.SortedByDate(picked),
		})
		res.Total += len(picked)
	}
	return res
}

// CategoryStats summarizes one category.
type CategoryStats struct {
	Category   category.Key `json:"category"`
	Entries    int          `json:"entries"`
	OpenAlerts int          `json:"openAlerts"`
	DoneAlerts int          `json:"doneAlerts"`
	Overdue    bool         `json:"overdue"`
}

// Stats summarizes every aggregate at a point in time.
type Stats struct {
	At         time.Time       `json:"at"`
	Entries    int             `json:"entries"`
	Archives   int             `json:"archives"`
	Alerts     int             `json:"alerts"`
	Overdue    []category.Key  `json:"overdue"`
	Categories []CategoryStats `json:"categories"`
}

// Stats counts entries, archives and alerts as of now.
func (s *Service) Stats(now time.Time) Stats {
	logs := s.logs.All()
	alerts := s.alerts.All()

	st := Stats{
		At:       now,
		Entries:  logs.Count(),
		Archives: len(s.archives.List()),
		Alerts:   alerts.Count(),
		Overdue:  []category.Key{},
	}
	for _, cat := range category.Keys() {
		cs := CategoryStats{Category: cat, Entries: len(logs[cat])}
		for _, a := range alerts[cat] {
			if a.Done {
				cs.DoneAlerts++
			} else {
				cs.OpenAlerts++
			}
			if a.Overdue(now) {
				cs.Overdue = true
			}
		}
		if cs.Overdue {
			st.Overdue = append(st.Overdue, cat)
		}
		st.Categories = append(st.Categories, cs)
	}
	return st
}
