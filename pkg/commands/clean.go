package commands

import (
	"context"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/commands/options"
	"tableflip.dev/lifelog/pkg/runner/clean"
)

func addClean(topLevel *cobra.Command) {
	co := &options.CleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clear the active notes, archiving them first unless told otherwise.",
		Long: base.Wrap80(`Clean asks whether to archive the active notes before clearing them.
Clearing without an archive cannot be undone and must be confirmed by typing "discard".`),
		Example: `
lifelog clean
lifelog clean --archive --yes
lifelog clean --discard --confirm discard
`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return co.Validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, _, err := open()
			if err != nil {
				return output.HandleError(err)
			}
			defer svc.Close()

			s := clean.Clean{
				Archive: co.Archive,
				Discard: co.Discard,
				Yes:     co.Yes,
				Confirm: co.Confirm,
				Service: svc,
				Printer: printer(cmd.OutOrStdout(), nil),
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddCleanArgs(cmd, co)
	topLevel.AddCommand(cmd)
}
