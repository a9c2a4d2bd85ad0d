package options

import (
	"github.com/spf13/cobra"
)

// IDOptions controls whether listings print the ids that delete, done and
// restore take.
type IDOptions struct {
	ShowID bool
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false, "print ids next to notes and alerts")
}
