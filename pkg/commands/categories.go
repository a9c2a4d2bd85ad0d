package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/runner/categories"
)

func addCategories(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List the categories notes and alerts are filed under.",
		Example: `
lifelog categories
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := categories.Categories{
				Printer: printer(cmd.OutOrStdout(), nil),
			}
			err := s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
