// Package printers renders engine state for the terminal.
package printers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"tableflip.dev/lifelog/pkg/alert"
	"tableflip.dev/lifelog/pkg/archive"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
	"tableflip.dev/lifelog/pkg/repository"
)

// PrettyPrint writes colored, human oriented output.
type PrettyPrint struct {
	ShowID bool
	// Width wraps long notes; 0 means 80.
	Width int
	Out   io.Writer
	// Now is used for overdue markers; zero means time.Now.
	Now time.Time

	term *termenv.Output
}

// HonorNoColor turns colors off when NO_COLOR is set.
func HonorNoColor() {
	if termenv.NewOutput(os.Stdout).EnvNoColor() {
		color.NoColor = true
	}
}

// Writer is where output goes, color.Output by default.
func (pp *PrettyPrint) Writer() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now.IsZero() {
		return time.Now()
	}
	return pp.Now
}

func (pp *PrettyPrint) width() int {
	if pp.Width <= 0 {
		return 80
	}
	return pp.Width
}

// paint renders s in the category color, unless colors are off.
func (pp *PrettyPrint) paint(k category.Key, s string) string {
	c, ok := category.Lookup(k)
	if !ok || color.NoColor {
		return s
	}
	if pp.term == nil {
		pp.term = termenv.NewOutput(os.Stdout)
	}
	return pp.term.String(s).Foreground(pp.term.Color(c.RGB().Hex())).Bold().String()
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.Writer(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.Writer(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.Writer(), title)
	_, _ = c.Fprintf(pp.Writer(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.Writer(), " entry")
	default:
		_, _ = c.Fprintln(pp.Writer(), " entries")
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.Writer(), " none\n\n")
}

// Categories prints the category legend.
func (pp *PrettyPrint) Categories(cats []category.Category) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Key"), bold.Sprint("Label"), bold.Sprint("Aliases"))
	for _, c := range cats {
		tbl.AddRow(pp.paint(c.Key, string(c.Key)), c.Label, strings.Join(c.Aliases, ", "))
	}
	_, _ = fmt.Fprintln(pp.Writer(), tbl)
}

// Entries prints one category's notes in the given order.
func (pp *PrettyPrint) Entries(k category.Key, entries []entry.LogEntry) {
	_, _ = fmt.Fprintln(pp.Writer(), pp.paint(k, k.Label()))
	if len(entries) == 0 {
		pp.none()
		return
	}

	faint := color.New(color.Faint)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	indent := "    "
	for _, e := range entries {
		if pp.ShowID {
			_, _ = y.Fprintf(pp.Writer(), "  %s\n", e.ID)
		}
		_, _ = faint.Fprintf(pp.Writer(), "  %s\n", displayTime(e.Date))
		text := wordwrap.String(e.Activity, pp.width()-len(indent))
		for _, line := range strings.Split(text, "\n") {
			_, _ = fmt.Fprintf(pp.Writer(), "%s%s\n", indent, line)
		}
	}
	pp.NewLine()
}

// Logs prints every category, skipping empty ones unless all are empty.
func (pp *PrettyPrint) Logs(logs entry.Logs) {
	pp.TitleWithCount("Logs", logs.Count())
	if logs.Empty() {
		pp.none()
		return
	}
	for _, k := range category.Keys() {
		if len(logs[k]) == 0 {
			continue
		}
		pp.Entries(k, entry.SortedByDate(logs[k]))
	}
}

// Archives prints the archive list, newest first.
func (pp *PrettyPrint) Archives(list archive.List) {
	pp.Title("Archives")
	if len(list) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Taken"), bold.Sprint("Categories"), bold.Sprint("Entries"))
	for _, it := range list {
		cats, n := it.Summary()
		tbl.AddRow(it.ID, displayTime(it.Timestamp), cats, n)
	}
	tbl.RightAlign(2)
	tbl.RightAlign(3)
	_, _ = fmt.Fprintln(pp.Writer(), tbl)
}

// Archive prints one archive and its logs.
func (pp *PrettyPrint) Archive(it archive.Item) {
	pp.Title(fmt.Sprintf("Archive %s", it.ID))
	_, _ = color.New(color.Faint).Fprintf(pp.Writer(), "taken %s\n\n", displayTime(it.Timestamp))
	pp.Logs(it.Logs)
}

// Alerts prints every category holding alerts, marking overdue ones.
func (pp *PrettyPrint) Alerts(alerts alert.Alerts) {
	pp.Title("Alerts")
	if alerts.Count() == 0 {
		pp.none()
		return
	}
	now := pp.now()
	red := color.New(color.FgRed, color.Bold)
	faint := color.New(color.Faint)

	for _, k := range category.Keys() {
		list := alerts[k]
		if len(list) == 0 {
			continue
		}
		header := pp.paint(k, k.Label())
		if alert.AnyOverdue(list, now) {
			header += " " + red.Sprint("overdue")
		}
		_, _ = fmt.Fprintln(pp.Writer(), header)

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = uint(pp.width())
		tbl.Wrap = true
		for _, a := range list {
			tbl.AddRow(pp.alertRow(a, now, red, faint)...)
		}
		_, _ = fmt.Fprintln(pp.Writer(), tbl)
		pp.NewLine()
	}
}

func (pp *PrettyPrint) alertRow(a alert.Alert, now time.Time, red, faint *color.Color) []interface{} {
	mark := "[ ]"
	task := a.Task
	due := displayTime(a.Deadline)
	switch {
	case a.Done:
		mark = "[x]"
		task = faint.Sprint(task)
		due = faint.Sprint(due)
	case a.Overdue(now):
		mark = red.Sprint("[!]")
		due = red.Sprint(due)
	}
	row := []interface{}{"  " + mark, task, due}
	if pp.ShowID {
		row = append(row, color.New(color.FgHiYellow, color.Faint).Sprint(a.ID))
	}
	return row
}

// Upcoming prints alerts due soon.
func (pp *PrettyPrint) Upcoming(list []repository.Upcoming, window time.Duration) {
	pp.Title(fmt.Sprintf("Due within %s", window))
	if len(list) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, u := range list {
		tbl.AddRow(pp.paint(u.Category, string(u.Category)), u.Alert.Task, displayTime(u.Alert.Deadline))
	}
	_, _ = fmt.Fprintln(pp.Writer(), tbl)
}

// Overdue prints the overdue categories on one line.
func (pp *PrettyPrint) Overdue(keys []category.Key) {
	if len(keys) == 0 {
		_, _ = color.New(color.FgGreen).Fprintln(pp.Writer(), "nothing overdue")
		return
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = pp.paint(k, k.Label())
	}
	_, _ = color.New(color.FgRed, color.Bold).Fprint(pp.Writer(), "overdue: ")
	_, _ = fmt.Fprintln(pp.Writer(), strings.Join(parts, ", "))
}

// displayTime shows canonical timestamps in local time. Anything else is
// shown as stored.
func displayTime(v string) string {
	t, err := entry.ParseTime(v)
	if err != nil {
		return v
	}
	return t.Local().Format("Mon Jan 2 2006 15:04")
}
