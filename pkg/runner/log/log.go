package log

import (
	"context"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/printers"
)

// Log shows the active notes of one category, or of all of them.
type Log struct {
	Category category.Key

	Service *app.Service
	Printer printers.Printer
}

func (n *Log) Do(ctx context.Context) error {
	if n.Category == "" {
		logs := n.Service.Logs()
		return n.Printer.Print(logs, func(pp *printers.PrettyPrint) {
			pp.Logs(logs)
		})
	}

	entries, err := n.Service.LogsFor(n.Category)
	if err != nil {
		return err
	}
	return n.Printer.Print(entries, func(pp *printers.PrettyPrint) {
		pp.TitleWithCount(n.Category.Label(), len(entries))
		pp.Entries(n.Category, entries)
	})
}
