package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/commands/options"
	"tableflip.dev/lifelog/pkg/runner/log"
)

func addLog(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "log [category]",
		Aliases: []string{"ls", "get"},
		Short:   "Show the active notes, for every category or just one.",
		Example: `
lifelog log
lifelog log health --show-id
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("accepts at most one category, got %d", len(args))
			}
			return nil
		},
		ValidArgsFunction: categoryCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			var cat category.Key
			if len(args) == 1 {
				k, err := categoryArg(args[0])
				if err != nil {
					return err
				}
				cat = k
			}
			svc, _, err := open()
			if err != nil {
				return output.HandleError(err)
			}
			defer svc.Close()

			s := log.Log{
				Category: cat,
				Service:  svc,
				Printer:  printer(cmd.OutOrStdout(), io),
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}
