package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/commands/options"
	"tableflip.dev/lifelog/pkg/config"
	"tableflip.dev/lifelog/pkg/printers"
	"tableflip.dev/lifelog/pkg/store"
)

var (
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "lifelog",
		Short: base.Wrap80("Keep a log of your life across eight categories, with alerts and archives."),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			printers.HonorNoColor()
			return output.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddOutputArg(cmd, output)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addCategories(topLevel)
	addAdd(topLevel)
	addLog(topLevel)
	addDelete(topLevel)
	addArchive(topLevel)
	addAlert(topLevel)
	addClean(topLevel)
	addWatch(topLevel)
	addBoard(topLevel)
	addServe(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addReport(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// open loads the config and opens the engine it describes. Callers close
// the Service.
func open() (*app.Service, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	svc, err := app.Open(cfg, store.DefaultLogger())
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("open store at %s: %w", cfg.Path, err)
	}
	return svc, cfg, nil
}

func printer(w io.Writer, ids *options.IDOptions) printers.Printer {
	p := printers.Printer{
		Format: output.Format,
		Pretty: printers.PrettyPrint{Out: w},
	}
	if ids != nil {
		p.Pretty.ShowID = ids.ShowID
	}
	return p
}

func categoryArg(raw string) (category.Key, error) {
	k, err := category.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w; see 'lifelog categories'", err)
	}
	return k, nil
}

func categoryCompletions(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	keys := category.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// interruptible is cancelled on SIGINT or SIGTERM.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
