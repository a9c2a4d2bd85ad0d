package archive

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/printers"
)

// Action selects what Archive does.
type Action int

const (
	Now Action = iota
	List
	Show
	Restore
	Delete
)

type Archive struct {
	Action Action
	ID     string

	Service *app.Service
	Printer printers.Printer
}

func (n *Archive) Do(ctx context.Context) error {
	switch n.Action {
	case Now:
		it, err := n.Service.ArchiveNow()
		if err != nil {
			return err
		}
		return n.Printer.Print(it, func(pp *printers.PrettyPrint) {
			cats, entries := it.Summary()
			_, _ = fmt.Fprintf(pp.Writer(), "archived %d entries in %d categories as %s\n", entries, cats, it.ID)
		})

	case List:
		list := n.Service.Archives()
		return n.Printer.Print(list, func(pp *printers.PrettyPrint) {
			pp.Archives(list)
		})

	case Show:
		it, err := n.Service.Archive(n.ID)
		if err != nil {
			return err
		}
		return n.Printer.Print(it, func(pp *printers.PrettyPrint) {
			pp.Archive(it)
		})

	case Restore:
		logs, err := n.Service.RestoreArchive(n.ID)
		if err != nil {
			return err
		}
		return n.Printer.Print(logs, func(pp *printers.PrettyPrint) {
			_, _ = fmt.Fprintf(pp.Writer(), "restored archive %s\n\n", n.ID)
			pp.Logs(logs)
		})

	case Delete:
		ok, err := n.Service.DeleteArchive(n.ID)
		if err != nil {
			return err
		}
		res := struct {
			ID      string `json:"id"`
			Deleted bool   `json:"deleted"`
		}{n.ID, ok}
		return n.Printer.Print(res, func(pp *printers.PrettyPrint) {
			if !ok {
				_, _ = color.New(color.Faint).Fprintf(pp.Writer(), "no archive %s\n", n.ID)
				return
			}
			_, _ = fmt.Fprintf(pp.Writer(), "deleted archive %s\n", n.ID)
		})
	}
	return fmt.Errorf("archive: unknown action %d", n.Action)
}
