package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func addVersion(topLevel *cobra.Command) {
	shortened := false

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get lifelog version.",
		Example: `
lifelog version
lifelog version -o yaml
`,
		Run: func(cmd *cobra.Command, _ []string) {
			format := "json"
			if output.Format == "yaml" {
				format = "yaml"
			}
			resp := goversion.FuncWithOutput(shortened, version, commit, date, format)
			fmt.Fprint(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")

	topLevel.AddCommand(cmd)
}
