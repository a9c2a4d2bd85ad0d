package add

import (
	"context"
	"errors"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/printers"
)

// ErrNothingAdded is returned when the engine rejected the input.
var ErrNothingAdded = errors.New("nothing added: the note is empty or its date is invalid")

type Add struct {
	Category category.Key
	Message  string
	// Date is YYYY-MM-DD and Clock is HH:MM; either may be empty.
	Date  string
	Clock string

	Service *app.Service
	Printer printers.Printer
}

func (n *Add) Do(ctx context.Context) error {
	e, err := n.Service.AddLogAt(n.Category, n.Message, n.Date, n.Clock)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNothingAdded
	}

	entries, err := n.Service.LogsFor(n.Category)
	if err != nil {
		return err
	}
	return n.Printer.Print(e, func(pp *printers.PrettyPrint) {
		pp.Entries(n.Category, entries)
	})
}
