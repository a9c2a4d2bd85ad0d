package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/commands/options"
	"tableflip.dev/lifelog/pkg/runner/report"
)

func addReport(topLevel *cobra.Command) {
	wo := &options.WindowOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List the notes dated within a recent window, by category.",
		Example: `
lifelog report
lifelog report --since 2w
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			window, label, err := wo.Get(7 * 24 * time.Hour)
			if err != nil {
				return err
			}
			svc, _, err := open()
			if err != nil {
				return output.HandleError(err)
			}
			defer svc.Close()

			s := report.Report{
				Window:  window,
				Label:   label,
				Service: svc,
				Printer: printer(cmd.OutOrStdout(), nil),
			}
			err = s.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddWindowArgs(cmd, wo, "since", `Window to report on, example: --since="3d" or "1w"; defaults to 1w.`)
	topLevel.AddCommand(cmd)
}
