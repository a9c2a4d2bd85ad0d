package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/printers"
	"tableflip.dev/lifelog/pkg/store"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchReportsExternalChanges(t *testing.T) {
	shared := store.NewShared()
	here := app.New(shared.Handle(), app.Options{Logger: store.DiscardLogger()})
	there := app.New(shared.Handle(), app.Options{Logger: store.DiscardLogger()})
	defer here.Close()
	defer there.Close()

	out := &syncBuffer{}
	w := &Watch{
		Tick:    time.Hour,
		Service: here,
		Printer: printers.Printer{Format: printers.FormatJSON, Pretty: printers.PrettyPrint{Out: out}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Do(ctx) }()

	// Wait for the initial line so the watch is subscribed.
	waitFor(t, func() bool { return strings.Count(out.String(), "\n}") >= 1 })

	there.AddAlert(category.Finance, "rent", "2000-01-01T00:00:00Z")
	waitFor(t, func() bool { return strings.Count(out.String(), "\n}") >= 2 })

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Do: %v", err)
	}

	dec := json.NewDecoder(strings.NewReader(out.String()))
	var lines []Line
	for dec.More() {
		var l Line
		if err := dec.Decode(&l); err != nil {
			t.Fatalf("decode: %v", err)
		}
		lines = append(lines, l)
	}
	if len(lines) < 2 {
		t.Fatalf("lines = %v", lines)
	}
	second := lines[1]
	if second.Event == nil || second.Event.Aggregate != app.AggregateAlerts || !second.Event.External {
		t.Errorf("event = %+v", second.Event)
	}
	if len(second.Overdue) != 1 || second.Overdue[0] != category.Finance {
		t.Errorf("overdue = %v", second.Overdue)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
