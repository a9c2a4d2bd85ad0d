package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/runner/archive"
)

func addArchive(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Snapshot the active notes. Archiving does not clear them.",
		Example: `
lifelog archive
lifelog archive list
lifelog archive restore <archive id>
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runArchive(cmd, archive.Now, "")
		},
	}

	add := func(use, short string, action archive.Action, aliases ...string) {
		sub := &cobra.Command{
			Use:     use,
			Aliases: aliases,
			Short:   short,
			Args: func(cmd *cobra.Command, args []string) error {
				if action != archive.List && len(args) != 1 {
					return errors.New("requires an archive id")
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				id := ""
				if len(args) > 0 {
					id = args[0]
				}
				return runArchive(cmd, action, id)
			},
		}
		cmd.AddCommand(sub)
	}
	add("list", "List archives, newest first.", archive.List, "ls")
	add("show <id>", "Show the notes held by an archive.", archive.Show, "get")
	add("restore <id>", "Replace the active notes with a copy of an archive.", archive.Restore)
	add("delete <id>", "Delete an archive. Deleting one that is already gone is not an error.", archive.Delete, "rm")

	topLevel.AddCommand(cmd)
}

func runArchive(cmd *cobra.Command, action archive.Action, id string) error {
	cmd.SilenceUsage = true
	svc, _, err := open()
	if err != nil {
		return output.HandleError(err)
	}
	defer svc.Close()

	s := archive.Archive{
		Action:  action,
		ID:      id,
		Service: svc,
		Printer: printer(cmd.OutOrStdout(), nil),
	}
	err = s.Do(context.Background())
	return output.HandleError(err)
}
