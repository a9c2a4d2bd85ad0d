package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	var tick time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a line whenever the engine changes or the overdue categories do.",
		Example: `
lifelog watch
lifelog watch -o json --tick 10s
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, cfg, err := open()
			if err != nil {
				return output.HandleError(err)
			}
			defer svc.Close()
			if tick <= 0 {
				tick = cfg.Board.Tick
			}

			ctx, cancel := interruptible()
			defer cancel()
			s := watch.Watch{
				Tick:    tick,
				Service: svc,
				Printer: printer(cmd.OutOrStdout(), nil),
			}
			err = s.Do(ctx)
			return output.HandleError(err)
		},
	}

	cmd.Flags().DurationVar(&tick, "tick", 0, "How often to re-check overdue alerts; defaults to board.tick.")
	topLevel.AddCommand(cmd)
}
