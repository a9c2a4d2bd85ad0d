// Package board is a live terminal dashboard of the eight categories.
package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/lifelog/pkg/alert"
	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
)

const columns = 4

// Model is the board's Bubble Tea model.
type Model struct {
	ctx   context.Context
	svc   *app.Service
	keys  keyMap
	theme Theme
	tick  time.Duration
	now   func() time.Time

	cats     []category.Category
	selected int
	width    int
	height   int
	status   string

	logs     entry.Logs
	alerts   alert.Alerts
	overdue  map[category.Key]bool
	archives int

	watchCh     <-chan app.Event
	watchCancel context.CancelFunc
}

// New builds a board on svc, re-checking overdue alerts every tick.
func New(ctx context.Context, svc *app.Service, tick time.Duration) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if tick <= 0 {
		tick = 30 * time.Second
	}
	m := &Model{
		ctx:   ctx,
		svc:   svc,
		keys:  defaultKeys(),
		theme: DefaultTheme(),
		tick:  tick,
		now:   time.Now,
		cats:  category.All(),
	}
	m.refresh()
	return m
}

// Run shows the board until the user quits.
func Run(ctx context.Context, svc *app.Service, tick time.Duration) error {
	m := New(ctx, svc, tick)
	defer m.stopWatch()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type tickMsg time.Time

type watchStartedMsg struct {
	ch     <-chan app.Event
	cancel context.CancelFunc
}

type watchEventMsg struct {
	event app.Event
}

type watchStoppedMsg struct{}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), startWatchCmd(m.ctx, m.svc))
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func startWatchCmd(parent context.Context, svc *app.Service) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		return watchStartedMsg{ch: svc.Watch(ctx), cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

// refresh copies the engine state the view renders from.
func (m *Model) refresh() {
	if m.svc == nil {
		return
	}
	now := m.now()
	m.logs = m.svc.Logs()
	m.alerts = m.svc.Alerts()
	m.archives = len(m.svc.Archives())
	m.overdue = make(map[category.Key]bool)
	for _, k := range m.svc.OverdueCategories(now) {
		m.overdue[k] = true
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		m.refresh()
		return m, m.tickCmd()
	case watchStartedMsg:
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		return m, m.waitForWatch()
	case watchEventMsg:
		m.refresh()
		origin := "here"
		if msg.event.External {
			origin = "elsewhere"
		}
		m.status = fmt.Sprintf("%s changed %s", msg.event.Aggregate, origin)
		return m, m.waitForWatch()
	case watchStoppedMsg:
		m.watchCh = nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	n := len(m.cats)
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopWatch()
		return tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.selected = (m.selected - 1 + n) % n
	case key.Matches(msg, m.keys.Right):
		m.selected = (m.selected + 1) % n
	case key.Matches(msg, m.keys.Up):
		m.selected = (m.selected - columns + n) % n
	case key.Matches(msg, m.keys.Down):
		m.selected = (m.selected + columns) % n
	case key.Matches(msg, m.keys.Refresh):
		m.refresh()
		m.status = "refreshed"
	case key.Matches(msg, m.keys.Archive):
		it, err := m.svc.ArchiveNow()
		if err != nil {
			m.status = "ERR: archive " + err.Error()
			break
		}
		m.refresh()
		_, entries := it.Summary()
		m.status = fmt.Sprintf("archived %d entries", entries)
	}
	return nil
}

// Selected is the highlighted category.
func (m *Model) Selected() category.Key {
	return m.cats[m.selected].Key
}

func (m *Model) cellWidth() int {
	w := 18
	if m.width > 0 {
		if fit := m.width/columns - 2; fit > w {
			w = fit
		}
	}
	return w
}

func (m *Model) View() string {
	th := m.theme
	title := th.Header.Title.Render("lifelog")
	sub := th.Header.Counts.Render(fmt.Sprintf("  %d entries · %d archives · %d alerts", m.logs.Count(), m.archives, m.alerts.Count()))

	var rows []string
	for start := 0; start < len(m.cats); start += columns {
		end := start + columns
		if end > len(m.cats) {
			end = len(m.cats)
		}
		cells := make([]string, 0, columns)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCell(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	parts := []string{title + sub, "", lipgloss.JoinVertical(lipgloss.Left, rows...), "", m.renderDetail()}
	if m.status != "" {
		parts = append(parts, "", th.Footer.Status.Render(m.status))
	}
	parts = append(parts, th.Footer.Help.Render(m.keys.help()))
	return strings.Join(parts, "\n")
}

func (m *Model) renderCell(i int) string {
	c := m.cats[i]
	accent := lipgloss.Color(c.Color)

	style := m.theme.Cell.Frame
	if i == m.selected {
		style = m.theme.Cell.Selected
	}
	style = style.BorderForeground(accent).Width(m.cellWidth())

	status := fmt.Sprintf("%d open", openAlerts(m.alerts[c.Key]))
	if m.overdue[c.Key] {
		style = style.Background(lipgloss.Color(c.Tint(0.75).Hex()))
		status = m.theme.Cell.Overdue.Render("! overdue")
	}

	label := m.theme.Cell.Label.Foreground(accent).Render(c.Label)
	return style.Render(strings.Join([]string{
		label,
		fmt.Sprintf("%d entries", len(m.logs[c.Key])),
		status,
	}, "\n"))
}

// renderDetail lists the newest notes and open alerts of the selection.
func (m *Model) renderDetail() string {
	k := m.Selected()
	var b strings.Builder

	entries := entry.SortedByDate(m.logs[k])
	if len(entries) == 0 {
		b.WriteString("no notes\n")
	}
	for i := len(entries) - 1; i >= 0 && i >= len(entries)-5; i-- {
		fmt.Fprintf(&b, "• %s\n", entries[i].Activity)
	}

	now := m.now()
	for _, a := range m.alerts[k] {
		if a.Done {
			continue
		}
		mark := "○"
		if a.Overdue(now) {
			mark = "!"
		}
		fmt.Fprintf(&b, "%s %s (%s)\n", mark, a.Task, a.Deadline)
	}
	body := m.theme.Detail.Body.Render(strings.TrimRight(b.String(), "\n"))
	return m.theme.Detail.Title.Render(k.Label()) + "\n" + body
}

func openAlerts(list []alert.Alert) int {
	n := 0
	for _, a := range list {
		if !a.Done {
			n++
		}
	}
	return n
}
