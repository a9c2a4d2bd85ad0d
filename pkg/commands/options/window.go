package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/timeutil"
)

// WindowOptions
type WindowOptions struct {
	Window string
}

func AddWindowArgs(cmd *cobra.Command, o *WindowOptions, name, usage string) {
	cmd.Flags().StringVar(&o.Window, name, "", usage)
}

// Get parses the window, using fallback when it is unset.
func (o *WindowOptions) Get(fallback time.Duration) (time.Duration, string, error) {
	return timeutil.ParseWindow(o.Window, fallback)
}
