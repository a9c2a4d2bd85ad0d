package archive

import (
	"testing"
	"time"

	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
)

func TestNewSnapshotsIndependently(t *testing.T) {
	live := entry.Logs{category.Career: {{ID: "1", Activity: "Shipped"}}}
	it := New(live, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	live[category.Career][0].Activity = "mutated"
	live[category.Career] = append(live[category.Career], entry.LogEntry{ID: "2"})

	if got := it.Logs[category.Career]; len(got) != 1 || got[0].Activity != "Shipped" {
		t.Fatalf("archive payload changed with live state: %+v", got)
	}
	if it.Timestamp != "2024-01-01T00:00:00.000Z" {
		t.Errorf("Timestamp = %q", it.Timestamp)
	}
	if it.ID == "" {
		t.Error("expected an id")
	}
}

func TestNewEmpty(t *testing.T) {
	it := New(nil, time.Now())
	if it.Logs == nil || len(it.Logs) != 0 {
		t.Fatalf("expected empty logs, got %#v", it.Logs)
	}
}

func TestSummaryAndFind(t *testing.T) {
	it := Item{ID: "a", Logs: entry.Logs{
		category.Health: {{ID: "1"}, {ID: "2"}},
		category.Hobby:  {},
		category.Family: {{ID: "3"}},
	}}
	cats, n := it.Summary()
	if cats != 2 || n != 3 {
		t.Errorf("Summary = %d, %d; want 2, 3", cats, n)
	}

	l := List{{ID: "b"}, it}
	if l.Find("a") != 1 || l.Find("zzz") != -1 {
		t.Errorf("Find returned wrong index")
	}
}
