package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about where the log is stored and how much is in it.",
		Example: `
lifelog info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, cfg, err := open()
			if err != nil {
				return output.HandleError(err)
			}
			defer svc.Close()

			s := info.Info{
				Config:  cfg,
				Service: svc,
				Printer: printer(cmd.OutOrStdout(), nil),
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
