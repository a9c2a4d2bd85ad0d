package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/runner/strike"
)

func addDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete <category> <id>",
		Aliases: []string{"strike", "rm"},
		Short:   "Delete a note. Deleting a note that is already gone is not an error.",
		Example: `
lifelog delete health 01890a5d-ac96-774b-bcce-b302099a8057
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a category and a note id")
			}
			return nil
		},
		ValidArgsFunction: categoryCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cat, err := categoryArg(args[0])
			if err != nil {
				return err
			}
			svc, _, err := open()
			if err != nil {
				return output.HandleError(err)
			}
			defer svc.Close()

			s := strike.Strike{
				Category: cat,
				ID:       args[1],
				Service:  svc,
				Printer:  printer(cmd.OutOrStdout(), nil),
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
