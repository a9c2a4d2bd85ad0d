package strike

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/printers"
)

// Strike deletes one note.
type Strike struct {
	Category category.Key
	ID       string

	Service *app.Service
	Printer printers.Printer
}

type result struct {
	Category category.Key `json:"category"`
	ID       string       `json:"id"`
	Deleted  bool         `json:"deleted"`
}

func (n *Strike) Do(ctx context.Context) error {
	ok, err := n.Service.DeleteLog(n.Category, n.ID)
	if err != nil {
		return err
	}
	res := result{Category: n.Category, ID: n.ID, Deleted: ok}
	return n.Printer.Print(res, func(pp *printers.PrettyPrint) {
		if !ok {
			_, _ = color.New(color.Faint).Fprintf(pp.Writer(), "no note %s in %s\n", n.ID, n.Category)
			return
		}
		_, _ = fmt.Fprintf(pp.Writer(), "deleted %s from %s\n", n.ID, n.Category.Label())
	})
}
