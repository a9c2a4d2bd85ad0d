package board

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/store"
)

func newBoard(t *testing.T) (*Model, *app.Service) {
	t.Helper()
	svc := app.New(store.NewMemory(), app.Options{Logger: store.DiscardLogger()})
	t.Cleanup(func() { svc.Close() })
	m := New(context.Background(), svc, time.Minute)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, svc
}

func press(m *Model, code rune, text string) tea.Cmd {
	_, cmd := m.Update(tea.KeyPressMsg{Code: code, Text: text})
	return cmd
}

func TestNavigationWraps(t *testing.T) {
	m, _ := newBoard(t)
	if m.Selected() != category.Health {
		t.Fatalf("initial selection = %s", m.Selected())
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	if m.Selected() != category.Hobby {
		t.Errorf("left from first = %s, want hobby", m.Selected())
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected() != category.Education {
		t.Errorf("down from hobby = %s, want education", m.Selected())
	}
	press(m, 'l', "l")
	if m.Selected() != category.Emotion {
		t.Errorf("right from education = %s, want emotion", m.Selected())
	}
}

func TestOverdueShownAfterTick(t *testing.T) {
	m, svc := newBoard(t)
	svc.AddAlert(category.Finance, "rent", "2024-01-05T09:00:00Z")

	m.now = func() time.Time { return time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC) }
	m.Update(tickMsg(time.Now()))
	if m.overdue[category.Finance] {
		t.Fatal("not overdue before the deadline")
	}

	m.now = func() time.Time { return time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC) }
	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if !m.overdue[category.Finance] {
		t.Fatal("expected finance overdue after the deadline")
	}
	if !strings.Contains(m.View(), "overdue") {
		t.Error("view does not show overdue")
	}
}

func TestWatchEventRefreshes(t *testing.T) {
	m, svc := newBoard(t)
	svc.AddLog(category.Health, "ran", "")
	if m.logs.Count() != 0 {
		t.Fatal("board should hold a snapshot until refreshed")
	}
	m.Update(watchEventMsg{event: app.Event{Aggregate: app.AggregateLogs}})
	if m.logs.Count() != 1 {
		t.Fatal("watch event did not refresh")
	}
	if !strings.Contains(m.View(), "ran") {
		t.Error("detail pane missing the new note")
	}
}

func TestArchiveKey(t *testing.T) {
	m, svc := newBoard(t)
	svc.AddLog(category.Health, "ran", "")
	press(m, 'a', "a")
	if len(svc.Archives()) != 1 {
		t.Fatal("archive key did not archive")
	}
	if !strings.Contains(m.status, "archived 1 entries") {
		t.Errorf("status = %q", m.status)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newBoard(t)
	cmd := press(m, 'q', "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestWatchStartsFromInit(t *testing.T) {
	m, svc := newBoard(t)
	cmd := startWatchCmd(context.Background(), svc)
	msg := cmd()
	started, ok := msg.(watchStartedMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	_, next := m.Update(started)
	if next == nil {
		t.Fatal("expected a wait command")
	}
	svc.AddAlert(category.Hobby, "gig", "2030-01-01T00:00:00Z")
	evt, ok := next().(watchEventMsg)
	if !ok || evt.event.Aggregate != app.AggregateAlerts {
		t.Fatalf("event = %+v", evt)
	}
	m.stopWatch()
}
