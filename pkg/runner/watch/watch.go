package watch

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/printers"
	"tableflip.dev/lifelog/pkg/schedule"
)

// Watch follows engine changes and re-checks overdue alerts every Tick
// until ctx is done.
type Watch struct {
	Tick time.Duration

	Service *app.Service
	Printer printers.Printer
}

// Line is one line of watch output.
type Line struct {
	At      time.Time      `json:"at"`
	Event   *app.Event     `json:"event,omitempty"`
	Overdue []category.Key `json:"overdue"`
}

func (n *Watch) Do(ctx context.Context) error {
	if n.Tick <= 0 {
		n.Tick = 30 * time.Second
	}
	events := n.Service.Watch(ctx)

	ticks := make(chan struct{}, 1)
	sched := schedule.New(nil)
	if _, err := sched.Every(n.Tick, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	last := n.Service.OverdueCategories(time.Now())
	if err := n.emit(Line{At: time.Now(), Overdue: last}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			now := time.Now()
			last = n.Service.OverdueCategories(now)
			if err := n.emit(Line{At: now, Event: &evt, Overdue: last}); err != nil {
				return err
			}
		case <-ticks:
			now := time.Now()
			overdue := n.Service.OverdueCategories(now)
			if reflect.DeepEqual(overdue, last) {
				continue
			}
			last = overdue
			if err := n.emit(Line{At: now, Overdue: overdue}); err != nil {
				return err
			}
		}
	}
}

func (n *Watch) emit(l Line) error {
	if l.Overdue == nil {
		l.Overdue = []category.Key{}
	}
	return n.Printer.Print(l, func(pp *printers.PrettyPrint) {
		faint := color.New(color.Faint)
		_, _ = faint.Fprintf(pp.Writer(), "%s ", l.At.Format("15:04:05"))
		if l.Event != nil {
			origin := "here"
			if l.Event.External {
				origin = "elsewhere"
			}
			_, _ = fmt.Fprintf(pp.Writer(), "%s changed %s; ", l.Event.Aggregate, origin)
		}
		pp.Overdue(l.Overdue)
	})
}
