// Package categories prints the category legend.
package categories

import (
	"context"

	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/printers"
)

type Categories struct {
	Printer printers.Printer
}

type row struct {
	Key     category.Key `json:"key"`
	Label   string       `json:"label"`
	Color   string       `json:"color"`
	Aliases []string     `json:"aliases"`
}

func (n *Categories) Do(ctx context.Context) error {
	all := category.All()
	rows := make([]row, len(all))
	for i, c := range all {
		rows[i] = row{Key: c.Key, Label: c.Label, Color: c.Color, Aliases: c.Aliases}
	}
	return n.Printer.Print(rows, func(pp *printers.PrettyPrint) {
		pp.NewLine()
		pp.Categories(all)
	})
}
