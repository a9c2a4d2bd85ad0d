package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"

	model "tableflip.dev/lifelog/pkg/alert"
	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/printers"
)

// ErrNothingAdded is returned when the engine rejected the input.
var ErrNothingAdded = errors.New("nothing added: an alert needs a task, a date and a time")

// Action selects what Alert does.
type Action int

const (
	Add Action = iota
	List
	Done
	Delete
)

type Alert struct {
	Action   Action
	Category category.Key
	ID       string
	Task     string
	Date     string
	Clock    string
	// Within limits List to alerts due soon when non-zero.
	Within time.Duration
	Now    time.Time

	Service *app.Service
	Printer printers.Printer
}

func (n *Alert) now() time.Time {
	if n.Now.IsZero() {
		return time.Now()
	}
	return n.Now
}

func (n *Alert) Do(ctx context.Context) error {
	switch n.Action {
	case Add:
		a, err := n.Service.AddAlertAt(n.Category, n.Task, n.Date, n.Clock)
		if err != nil {
			return err
		}
		if a == nil {
			return ErrNothingAdded
		}
		return n.Printer.Print(a, func(pp *printers.PrettyPrint) {
			pp.Now = n.now()
			pp.Alerts(model.Alerts{n.Category: {*a}})
		})

	case List:
		if n.Within > 0 {
			soon := n.Service.UpcomingAlerts(n.now(), n.Within)
			return n.Printer.Print(soon, func(pp *printers.PrettyPrint) {
				pp.Upcoming(soon, n.Within)
			})
		}
		all := n.Service.Alerts()
		overdue := n.Service.OverdueCategories(n.now())
		res := struct {
			Alerts  model.Alerts   `json:"alerts"`
			Overdue []category.Key `json:"overdue"`
		}{all, overdue}
		return n.Printer.Print(res, func(pp *printers.PrettyPrint) {
			pp.Now = n.now()
			pp.Alerts(all)
			pp.Overdue(overdue)
		})

	case Done, Delete:
		verb := "completed"
		change := n.Service.CompleteAlert
		if n.Action == Delete {
			verb = "deleted"
			change = n.Service.DeleteAlert
		}
		ok, err := change(n.Category, n.ID)
		if err != nil {
			return err
		}
		res := struct {
			Category category.Key `json:"category"`
			ID       string       `json:"id"`
			Changed  bool         `json:"changed"`
		}{n.Category, n.ID, ok}
		return n.Printer.Print(res, func(pp *printers.PrettyPrint) {
			if !ok {
				_, _ = color.New(color.Faint).Fprintf(pp.Writer(), "no alert %s in %s\n", n.ID, n.Category)
				return
			}
			_, _ = fmt.Fprintf(pp.Writer(), "%s %s in %s\n", verb, n.ID, n.Category.Label())
		})
	}
	return fmt.Errorf("alert: unknown action %d", n.Action)
}
