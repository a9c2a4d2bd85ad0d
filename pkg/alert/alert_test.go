package alert

import (
	"testing"
	"time"

	"tableflip.dev/lifelog/pkg/category"
)

func mustTime(t *testing.T, v string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return ts
}

func TestOverdueIsStrict(t *testing.T) {
	a := Alert{ID: "1", Task: "Pay rent", Deadline: "2024-01-05T09:00:00Z"}
	deadline := mustTime(t, "2024-01-05T09:00:00Z")

	if a.Overdue(deadline) {
		t.Error("alert due exactly now should not be overdue")
	}
	if a.Overdue(deadline.Add(-time.Second)) {
		t.Error("alert before deadline should not be overdue")
	}
	if !a.Overdue(deadline.Add(time.Millisecond)) {
		t.Error("alert after deadline should be overdue")
	}

	a.Done = true
	if a.Overdue(deadline.Add(24 * time.Hour)) {
		t.Error("done alert should never be overdue")
	}
}

func TestOverdueUnparseableDeadline(t *testing.T) {
	a := Alert{Deadline: "soon"}
	if a.Overdue(time.Now()) {
		t.Error("unparseable deadline should not be overdue")
	}
}

func TestDueWithin(t *testing.T) {
	now := mustTime(t, "2024-01-01T00:00:00Z")
	a := Alert{Deadline: "2024-01-02T12:00:00Z"}
	if !a.DueWithin(now, 48*time.Hour) {
		t.Error("expected due within 48h")
	}
	if a.DueWithin(now, 24*time.Hour) {
		t.Error("did not expect due within 24h")
	}
	if a.DueWithin(mustTime(t, "2024-01-03T00:00:00Z"), 48*time.Hour) {
		t.Error("overdue alert is not upcoming")
	}
}

func TestDeadline(t *testing.T) {
	got, ok := Deadline("2024-01-05", "09:00", time.UTC)
	if !ok {
		t.Fatal("expected deadline to resolve")
	}
	if got != "2024-01-05T09:00:00.000Z" {
		t.Errorf("Deadline = %q", got)
	}

	wib := time.FixedZone("WIB", 7*3600)
	got, ok = Deadline("2024-01-05", "09:00", wib)
	if !ok || got != "2024-01-05T02:00:00.000Z" {
		t.Errorf("Deadline in WIB = %q, %v", got, ok)
	}

	for _, c := range [][2]string{{"", "09:00"}, {"2024-01-05", ""}, {"05/01/2024", "09:00"}, {"2024-01-05", "9am"}} {
		if _, ok := Deadline(c[0], c[1], time.UTC); ok {
			t.Errorf("Deadline(%q, %q) should not resolve", c[0], c[1])
		}
	}
}

func TestAnyOverdue(t *testing.T) {
	now := mustTime(t, "2024-01-06T00:00:00Z")
	list := []Alert{
		{Deadline: "2024-01-05T09:00:00Z", Done: true},
		{Deadline: "2024-02-05T09:00:00Z"},
	}
	if AnyOverdue(list, now) {
		t.Fatal("no open alert is past due")
	}
	list = append(list, Alert{Deadline: "2024-01-05T23:59:00Z"})
	if !AnyOverdue(list, now) {
		t.Fatal("expected overdue")
	}
}

func TestAlertsClone(t *testing.T) {
	orig := Alerts{category.Finance: {{ID: "1", Task: "Pay rent"}}}
	cp := orig.Clone()
	cp[category.Finance][0].Done = true
	if orig[category.Finance][0].Done {
		t.Fatal("clone should not share backing arrays")
	}
	if orig.Count() != 1 {
		t.Fatalf("Count = %d, want 1", orig.Count())
	}
}
