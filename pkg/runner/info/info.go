package info

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gosuri/uitable"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/config"
	"tableflip.dev/lifelog/pkg/printers"
)

// Info describes where data lives and how much of it there is.
type Info struct {
	Config  config.Config
	Service *app.Service
	Printer printers.Printer
}

type details struct {
	ConfigPath string      `json:"configPath,omitempty"`
	Backend    string      `json:"backend"`
	Path       string      `json:"path"`
	Keys       config.Keys `json:"keys"`
	SyncLogs   bool        `json:"syncLogs"`
	Stats      app.Stats   `json:"stats"`
}

func (n *Info) Do(ctx context.Context) error {
	d := details{
		ConfigPath: os.Getenv("LIFELOG_CONFIG_PATH"),
		Backend:    n.Config.Backend,
		Path:       n.Config.Path,
		Keys:       n.Config.Keys,
		SyncLogs:   n.Config.Sync.Logs,
		Stats:      n.Service.Stats(time.Now()),
	}
	return n.Printer.Print(d, func(pp *printers.PrettyPrint) {
		w := pp.Writer()
		if d.ConfigPath != "" {
			_, _ = fmt.Fprintln(w, "LIFELOG_CONFIG_PATH found on env, using", d.ConfigPath)
		} else {
			_, _ = fmt.Fprintln(w, "LIFELOG_CONFIG_PATH env var not set")
		}

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow("backend", d.Backend)
		tbl.AddRow("path", d.Path)
		tbl.AddRow("logs key", d.Keys.Logs)
		tbl.AddRow("archives key", d.Keys.Archives)
		tbl.AddRow("alerts key", d.Keys.Alerts)
		tbl.AddRow("sync logs", d.SyncLogs)
		tbl.AddRow("entries", d.Stats.Entries)
		tbl.AddRow("archives", d.Stats.Archives)
		tbl.AddRow("alerts", d.Stats.Alerts)
		_, _ = fmt.Fprintln(w, tbl)
		pp.Overdue(d.Stats.Overdue)
	})
}
