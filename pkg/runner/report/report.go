package report

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/printers"
)

// Report lists the notes dated within the last Window.
type Report struct {
	Window time.Duration
	Label  string
	Until  time.Time

	Service *app.Service
	Printer printers.Printer
}

func (n *Report) Do(ctx context.Context) error {
	until := n.Until
	if until.IsZero() {
		until = time.Now()
	}
	res := n.Service.Report(until.Add(-n.Window), until)
	return n.Printer.Print(res, func(pp *printers.PrettyPrint) {
		pp.TitleWithCount(fmt.Sprintf("Last %s", n.Label), res.Total)
		if res.Total == 0 {
			pp.NewLine()
			return
		}
		for _, sec := range res.Sections {
			pp.Entries(sec.Category, sec.Entries)
		}
	})
}
