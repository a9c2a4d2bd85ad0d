package printers

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/lifelog/pkg/alert"
	"tableflip.dev/lifelog/pkg/archive"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/entry"
)

func init() {
	color.NoColor = true
}

func TestLogsSkipsEmptyCategories(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Logs(entry.Logs{
		category.Health:  {{ID: "1", Date: "2024-01-01T07:00:00Z", Activity: "Ran 5km"}},
		category.Finance: {},
	})
	out := buf.String()
	if !strings.Contains(out, "Logs - 1 entry") {
		t.Errorf("missing title: %q", out)
	}
	if !strings.Contains(out, "Health") || !strings.Contains(out, "Ran 5km") {
		t.Errorf("missing health entry: %q", out)
	}
	if strings.Contains(out, "Finance") {
		t.Errorf("empty category printed: %q", out)
	}
}

func TestEntriesWrapsLongNotes(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, Width: 24}
	pp.Entries(category.Hobby, []entry.LogEntry{{
		ID:       "1",
		Date:     "2024-01-01T07:00:00Z",
		Activity: "painted a small landscape with far too many trees in it",
	}})
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if len(line) > 24 {
			t.Errorf("line %q longer than 24", line)
		}
	}
}

func TestAlertsMarksOverdue(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf, Now: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)}
	pp.Alerts(alert.Alerts{
		category.Finance: {{ID: "a", Task: "Pay rent", Deadline: "2024-01-05T09:00:00Z"}},
		category.Health:  {{ID: "b", Task: "Dentist", Deadline: "2024-01-05T09:00:00Z", Done: true}},
	})
	out := buf.String()
	if !strings.Contains(out, "Finance overdue") {
		t.Errorf("finance not marked overdue: %q", out)
	}
	if strings.Contains(out, "Health overdue") {
		t.Errorf("completed alert marked overdue: %q", out)
	}
	if !strings.Contains(out, "[!]") || !strings.Contains(out, "[x]") {
		t.Errorf("missing markers: %q", out)
	}
}

func TestArchivesTable(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Archives(archive.List{{
		ID:        "arch-1",
		Timestamp: "2024-01-01T00:00:00.000Z",
		Logs:      entry.Logs{category.Career: {{ID: "1"}, {ID: "2"}}},
	}})
	if !strings.Contains(buf.String(), "arch-1") {
		t.Errorf("missing id: %q", buf.String())
	}

	buf.Reset()
	pp.Archives(nil)
	if !strings.Contains(buf.String(), "none") {
		t.Errorf("empty list: %q", buf.String())
	}
}

func TestEncode(t *testing.T) {
	v := entry.LogEntry{ID: "1", Date: "d", Activity: "a"}

	var js bytes.Buffer
	if err := Encode(&js, FormatJSON, v); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back entry.LogEntry
	if err := json.Unmarshal(js.Bytes(), &back); err != nil || back != v {
		t.Errorf("json = %q", js.String())
	}

	var ym bytes.Buffer
	if err := Encode(&ym, FormatYAML, v); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(ym.String(), "activity: a") {
		t.Errorf("yaml = %q", ym.String())
	}

	if err := Encode(&ym, "xml", v); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestDisplayTimeFallsBack(t *testing.T) {
	if got := displayTime("whenever"); got != "whenever" {
		t.Errorf("displayTime = %q", got)
	}
}

func TestPrinterChoosesFormat(t *testing.T) {
	var buf bytes.Buffer
	p := Printer{Format: FormatJSON, Pretty: PrettyPrint{Out: &buf}}
	called := false
	if err := p.Print(map[string]int{"n": 1}, func(*PrettyPrint) { called = true }); err != nil {
		t.Fatalf("print: %v", err)
	}
	if called || !strings.Contains(buf.String(), `"n": 1`) {
		t.Errorf("json output = %q, pretty called %v", buf.String(), called)
	}

	p.Format = ""
	if err := p.Print(nil, func(*PrettyPrint) { called = true }); err != nil || !called {
		t.Errorf("text output: called %v err %v", called, err)
	}

	p.Format = "csv"
	if err := p.Print(nil, func(*PrettyPrint) {}); err == nil {
		t.Error("unknown format should fail")
	}
}
