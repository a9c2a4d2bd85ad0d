package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/board"
)

func addBoard(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "board",
		Aliases: []string{"ui"},
		Short:   "Open the live board of all categories.",
		Example: `
lifelog board
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, cfg, err := open()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := interruptible()
			defer cancel()
			return board.Run(ctx, svc, cfg.Board.Tick)
		},
	}

	topLevel.AddCommand(cmd)
}
