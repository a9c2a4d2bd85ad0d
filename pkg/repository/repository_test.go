package repository

import (
	"bytes"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"tableflip.dev/lifelog/pkg/archive"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
	"tableflip.dev/lifelog/pkg/store"
)

// countingStore records writes so tests can assert that no-ops stay no-ops.
type countingStore struct {
	store.Store
	writes int
	fail   error
}

func newCountingStore() *countingStore {
	return &countingStore{Store: store.NewMemory()}
}

func (c *countingStore) Write(key string, raw []byte) error {
	if c.fail != nil {
		return c.fail
	}
	c.writes++
	return c.Store.Write(key, raw)
}

func mustTime(t *testing.T, v string) time.Time {
	t.Helper()
	tm, err := entry.ParseTime(v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return tm
}

func TestAddLogScenario(t *testing.T) {
	r := NewLogs(newCountingStore(), "logs", nil)
	e, err := r.Add(category.Health, "Ran 5km", "2024-01-01T07:00:00Z")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e == nil || e.ID == "" {
		t.Fatalf("expected entry with id, got %+v", e)
	}

	all := r.All()
	got := all[category.Health]
	if len(got) != 1 {
		t.Fatalf("health has %d entries, want 1", len(got))
	}
	if got[0].Activity != "Ran 5km" || got[0].Date != "2024-01-01T07:00:00Z" || got[0].ID != e.ID {
		t.Errorf("entry = %+v", got[0])
	}
	if len(all) != 1 {
		t.Errorf("unexpected categories in %v", all)
	}
}

func TestAddLogRejectsInvalidInput(t *testing.T) {
	s := newCountingStore()
	r := NewLogs(s, "logs", nil)

	for _, tc := range []struct{ activity, when string }{
		{"", ""},
		{"   ", "2024-01-01T07:00:00Z"},
		{"walk", "yesterday"},
	} {
		e, err := r.Add(category.Health, tc.activity, tc.when)
		if err != nil || e != nil {
			t.Errorf("Add(%q, %q) = %v, %v; want nil, nil", tc.activity, tc.when, e, err)
		}
	}
	if s.writes != 0 {
		t.Errorf("rejected adds wrote %d times", s.writes)
	}
}

func TestAddLogDefaultsToNow(t *testing.T) {
	r := NewLogs(newCountingStore(), "logs", nil)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	e, err := r.Add(category.Family, "  dinner  ", "")
	if err != nil || e == nil {
		t.Fatalf("add: %v, %v", e, err)
	}
	if e.Date != "2024-03-01T12:00:00.000Z" {
		t.Errorf("Date = %q", e.Date)
	}
	if e.Activity != "dinner" {
		t.Errorf("Activity = %q", e.Activity)
	}
}

func TestLogsKeepInsertionOrder(t *testing.T) {
	r := NewLogs(newCountingStore(), "logs", nil)
	r.Add(category.Hobby, "later", "2024-02-01T00:00:00Z")
	r.Add(category.Hobby, "earlier", "2024-01-01T00:00:00Z")

	got := r.For(category.Hobby)
	if got[0].Activity != "later" || got[1].Activity != "earlier" {
		t.Fatalf("order = %v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newCountingStore()
	logs := NewLogs(s, "logs", nil)
	e, _ := logs.Add(category.Career, "ship", "")
	alerts := NewAlerts(s, "alerts", nil)
	a, _ := alerts.Add(category.Career, "review", "2024-01-01T00:00:00Z")
	archives := NewArchives(s, "archives", nil)
	archives.Create(logs.All())

	beforeLogs, _ := s.Read("logs")
	beforeAlerts, _ := s.Read("alerts")
	beforeArchives, _ := s.Read("archives")
	writes := s.writes

	if ok, err := logs.Delete(category.Career, "nope"); ok || err != nil {
		t.Errorf("Delete log = %v, %v", ok, err)
	}
	if ok, err := logs.Delete(category.Health, e.ID); ok || err != nil {
		t.Errorf("Delete log in wrong category = %v, %v", ok, err)
	}
	if ok, err := alerts.Delete(category.Career, "nope"); ok || err != nil {
		t.Errorf("Delete alert = %v, %v", ok, err)
	}
	if ok, err := alerts.Complete(category.Finance, a.ID); ok || err != nil {
		t.Errorf("Complete alert in wrong category = %v, %v", ok, err)
	}
	if ok, err := archives.Delete("nope"); ok || err != nil {
		t.Errorf("Delete archive = %v, %v", ok, err)
	}

	if s.writes != writes {
		t.Errorf("no-op deletes wrote %d times", s.writes-writes)
	}
	afterLogs, _ := s.Read("logs")
	afterAlerts, _ := s.Read("alerts")
	afterArchives, _ := s.Read("archives")
	if !bytes.Equal(beforeLogs, afterLogs) || !bytes.Equal(beforeAlerts, afterAlerts) || !bytes.Equal(beforeArchives, afterArchives) {
		t.Error("stored values changed after no-op deletes")
	}
}

func TestDeleteRemovesOne(t *testing.T) {
	r := NewLogs(newCountingStore(), "logs", nil)
	a, _ := r.Add(category.Emotion, "a", "")
	b, _ := r.Add(category.Emotion, "b", "")

	ok, err := r.Delete(category.Emotion, a.ID)
	if !ok || err != nil {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	got := r.For(category.Emotion)
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("remaining = %v", got)
	}
}

func TestReplaceAllRoundTrip(t *testing.T) {
	s := newCountingStore()
	r := NewLogs(s, "logs", nil)
	in := entry.Logs{
		category.Health:  {{ID: "1", Date: "2024-01-01T00:00:00Z", Activity: "x"}},
		category.Finance: {},
	}
	if err := r.ReplaceAll(in); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := r.All(); !reflect.DeepEqual(got, in) {
		t.Fatalf("All = %#v, want %#v", got, in)
	}

	// And after a reload from the store.
	r.Reload()
	if got := r.All(); !reflect.DeepEqual(got, in) {
		t.Fatalf("reloaded All = %#v, want %#v", got, in)
	}

	in[category.Health][0].Activity = "mutated"
	if r.All()[category.Health][0].Activity != "x" {
		t.Error("ReplaceAll kept a reference to the caller's value")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	r := NewLogs(newCountingStore(), "logs", nil)
	r.Add(category.Health, "x", "")
	got := r.All()
	got[category.Health][0].Activity = "changed"
	delete(got, category.Health)
	if r.All()[category.Health][0].Activity != "x" {
		t.Error("All exposed internal state")
	}
}

func TestFailedWriteKeepsState(t *testing.T) {
	s := newCountingStore()
	r := NewLogs(s, "logs", nil)
	s.fail = errors.New("disk full")

	if _, err := r.Add(category.Health, "x", ""); err == nil {
		t.Fatal("expected write error")
	}
	if !r.Empty() {
		t.Error("state changed despite failed write")
	}
}

func TestMalformedValueLoadsEmpty(t *testing.T) {
	s := store.NewMemory()
	s.Write("logs", []byte("garbage"))
	r := NewLogs(s, "logs", nil)
	if !r.Empty() {
		t.Fatal("malformed logs should load as empty")
	}
	if _, err := r.Add(category.Health, "x", ""); err != nil {
		t.Fatalf("add after recovery: %v", err)
	}
}

func TestArchiveIsolation(t *testing.T) {
	s := newCountingStore()
	logs := NewLogs(s, "logs", nil)
	archives := NewArchives(s, "archives", nil)
	logs.Add(category.Career, "one", "")

	it, err := archives.Create(logs.All())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	logs.Add(category.Career, "two", "")
	logs.ReplaceAll(entry.Logs{})

	got, err := archives.Restore(it.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(got[category.Career]) != 1 || got[category.Career][0].Activity != "one" {
		t.Fatalf("snapshot changed: %v", got)
	}

	got[category.Career][0].Activity = "tampered"
	again, _ := archives.Restore(it.ID)
	if again[category.Career][0].Activity != "one" {
		t.Error("restore handed out the archive's own state")
	}
	if len(archives.List()) != 1 {
		t.Error("restore should not remove the archive")
	}
}

func TestArchivesNewestFirst(t *testing.T) {
	r := NewArchives(newCountingStore(), "archives", nil)
	first, _ := r.Create(entry.Logs{})
	second, _ := r.Create(entry.Logs{})

	list := r.List()
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("list = %v", list)
	}

	ok, err := r.Delete(second.ID)
	if !ok || err != nil {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if _, found := r.Get(second.ID); found {
		t.Error("deleted archive still present")
	}
}

func TestEmptyArchiveScenario(t *testing.T) {
	r := NewArchives(newCountingStore(), "archives", nil)
	it, err := r.Create(entry.Logs{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.ID == "" || it.Timestamp == "" {
		t.Fatalf("invalid archive %+v", it)
	}
	got, err := r.Restore(it.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("Restore = %#v, want empty logs", got)
	}
}

func TestRestoreMissing(t *testing.T) {
	r := NewArchives(newCountingStore(), "archives", nil)
	if _, err := r.Restore("nope"); !errors.Is(err, archive.ErrNotFound) {
		t.Fatalf("err = %v, want archive.ErrNotFound", err)
	}
}

func TestOverdueScenario(t *testing.T) {
	r := NewAlerts(newCountingStore(), "alerts", nil)
	a, err := r.Add(category.Finance, "Pay rent", "2024-01-05T09:00:00Z")
	if err != nil || a == nil {
		t.Fatalf("add: %v, %v", a, err)
	}
	if a.Done {
		t.Error("new alert should be open")
	}

	now := mustTime(t, "2024-01-06T00:00:00Z")
	if !r.IsOverdue(category.Finance, now) {
		t.Fatal("expected finance overdue")
	}
	if ok, err := r.Complete(category.Finance, a.ID); !ok || err != nil {
		t.Fatalf("Complete = %v, %v", ok, err)
	}
	if r.IsOverdue(category.Finance, now) {
		t.Fatal("completed alert should not be overdue")
	}
}

func TestOverdueBoundaryIsStrict(t *testing.T) {
	r := NewAlerts(newCountingStore(), "alerts", nil)
	r.Add(category.Health, "checkup", "2024-01-05T09:00:00Z")
	deadline := mustTime(t, "2024-01-05T09:00:00Z")

	if r.IsOverdue(category.Health, deadline) {
		t.Error("deadline == now should not be overdue")
	}
	if r.IsOverdue(category.Health, deadline.Add(-time.Second)) {
		t.Error("now before deadline should not be overdue")
	}
	if !r.IsOverdue(category.Health, deadline.Add(time.Millisecond)) {
		t.Error("now after deadline should be overdue")
	}
	if r.IsOverdue(category.Family, deadline.Add(time.Hour)) {
		t.Error("other categories should not be overdue")
	}
}

func TestAddAlertRejectsInvalidInput(t *testing.T) {
	s := newCountingStore()
	r := NewAlerts(s, "alerts", nil)
	for _, tc := range []struct{ task, deadline string }{
		{"", "2024-01-05T09:00:00Z"},
		{"pay", ""},
		{"pay", "2024-01-05"},
	} {
		a, err := r.Add(category.Finance, tc.task, tc.deadline)
		if a != nil || err != nil {
			t.Errorf("Add(%q, %q) = %v, %v; want nil, nil", tc.task, tc.deadline, a, err)
		}
	}
	if s.writes != 0 {
		t.Errorf("rejected adds wrote %d times", s.writes)
	}
}

func TestOverdueCategoriesAndDueWithin(t *testing.T) {
	r := NewAlerts(newCountingStore(), "alerts", nil)
	r.Add(category.Hobby, "late", "2024-01-01T00:00:00Z")
	r.Add(category.Health, "late too", "2024-01-01T00:00:00Z")
	r.Add(category.Finance, "in two days", "2024-01-12T00:00:00Z")
	r.Add(category.Career, "tomorrow", "2024-01-11T00:00:00Z")
	r.Add(category.Family, "next month", "2024-02-10T00:00:00Z")
	now := mustTime(t, "2024-01-10T00:00:00Z")

	got := r.OverdueCategories(now)
	want := []category.Key{category.Health, category.Hobby}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OverdueCategories = %v, want %v", got, want)
	}

	soon := r.DueWithin(now, 48*time.Hour)
	if len(soon) != 2 {
		t.Fatalf("DueWithin = %v", soon)
	}
	if soon[0].Category != category.Career || soon[1].Category != category.Finance {
		t.Errorf("DueWithin order = %v", soon)
	}
}

func TestReloadPicksUpForeignWrite(t *testing.T) {
	shared := store.NewShared()
	a := NewAlerts(shared.Handle(), "alerts", nil)
	b := NewAlerts(shared.Handle(), "alerts", nil)

	alert, _ := a.Add(category.Spiritual, "retreat", "2024-01-01T00:00:00Z")
	if len(b.All()[category.Spiritual]) != 0 {
		t.Fatal("b should not see a's write before reload")
	}
	b.Reload()
	got := b.All()[category.Spiritual]
	if len(got) != 1 || got[0].ID != alert.ID {
		t.Fatalf("after reload b sees %v", got)
	}
}

// gatedStore blocks the next Read after arm until release is closed.
type gatedStore struct {
	store.Store

	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.entered = make(chan struct{})
	g.release = make(chan struct{})
}

func (g *gatedStore) Read(key string) ([]byte, error) {
	g.mu.Lock()
	armed, entered, release := g.armed, g.entered, g.release
	g.armed = false
	g.mu.Unlock()
	if armed {
		close(entered)
		<-release
	}
	return g.Store.Read(key)
}

func TestReloadDoesNotDropConcurrentAdd(t *testing.T) {
	g := &gatedStore{Store: store.NewMemory()}
	r := NewLogs(g, "logs", nil)

	g.arm()
	reloaded := make(chan struct{})
	go func() {
		r.Reload()
		close(reloaded)
	}()
	<-g.entered

	added := make(chan struct{})
	go func() {
		if _, err := r.Add(category.Health, "Ran 5km", "2024-01-01T07:00:00Z"); err != nil {
			t.Errorf("add: %v", err)
		}
		close(added)
	}()
	time.Sleep(20 * time.Millisecond)
	close(g.release)
	<-reloaded
	<-added

	stored := store.Load[entry.Logs](g, "logs", nil)
	if got, want := len(r.All()[category.Health]), len(stored[category.Health]); got != want || got != 1 {
		t.Fatalf("memory has %d health entries, store has %d; want 1 and 1", got, want)
	}
}
