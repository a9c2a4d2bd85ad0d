package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/commands/options"
	"tableflip.dev/lifelog/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	var (
		cat     category.Key
		message string
	)

	cmd := &cobra.Command{
		Use:     "add <category> <note...>",
		Aliases: []string{"note"},
		Short:   "Add a note to a category.",
		Example: `
lifelog add health ran 5k before work
lifelog add finance paid rent --on 2/1 --at 09:00
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("requires a category and a note")
			}
			k, err := categoryArg(args[0])
			if err != nil {
				return err
			}
			cat = k
			message = strings.Join(args[1:], " ")
			return nil
		},
		ValidArgsFunction: categoryCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			date, err := oo.Date(time.Now())
			if err != nil {
				return err
			}
			clock, err := oo.Clock()
			if err != nil {
				return err
			}
			svc, _, err := open()
			if err != nil {
				return output.HandleError(err)
			}
			defer svc.Close()

			s := add.Add{
				Category: cat,
				Message:  message,
				Date:     date,
				Clock:    clock,
				Service:  svc,
				Printer:  printer(cmd.OutOrStdout(), nil),
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddOnArgs(cmd, oo, "note")
	topLevel.AddCommand(cmd)
}
