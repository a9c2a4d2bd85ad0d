package options

import (
	"errors"

	"github.com/spf13/cobra"
)

// CleanOptions pick one of the two clean paths up front.
type CleanOptions struct {
	Archive bool
	Discard bool
	Yes     bool
	Confirm string
}

func AddCleanArgs(cmd *cobra.Command, o *CleanOptions) {
	cmd.Flags().BoolVar(&o.Archive, "archive", false,
		"Archive the active logs, then clear them.")
	cmd.Flags().BoolVar(&o.Discard, "discard", false,
		"Clear the active logs without an archive. Cannot be undone.")
	cmd.Flags().BoolVarP(&o.Yes, "yes", "y", false,
		"Confirm archive-then-clean without prompting.")
	cmd.Flags().StringVar(&o.Confirm, "confirm", "",
		`Confirmation phrase for --discard without prompting; must be "discard".`)
}

func (o *CleanOptions) Validate() error {
	if o.Archive && o.Discard {
		return errors.New("--archive and --discard are mutually exclusive")
	}
	if o.Yes && o.Discard {
		return errors.New(`--yes does not confirm --discard; use --confirm discard`)
	}
	return nil
}
