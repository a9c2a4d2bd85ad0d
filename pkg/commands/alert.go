package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/category"
	"tableflip.dev/lifelog/pkg/commands/options"
	"tableflip.dev/lifelog/pkg/config"
	"tableflip.dev/lifelog/pkg/runner/alert"
)

func addAlert(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "alert",
		Aliases: []string{"alerts"},
		Short:   "Track tasks with deadlines.",
		Example: `
lifelog alert add finance pay rent --on 2024-3-1 --at 09:00
lifelog alert list --within 2d
lifelog alert done finance <alert id>
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addAlertAdd(cmd)
	addAlertList(cmd)
	addAlertChange(cmd, "done <category> <id>", "Mark an alert done.", alert.Done, "complete")
	addAlertChange(cmd, "delete <category> <id>", "Delete an alert. Deleting one that is already gone is not an error.", alert.Delete, "rm")

	topLevel.AddCommand(cmd)
}

func addAlertAdd(parent *cobra.Command) {
	oo := &options.OnOptions{}
	var (
		cat  category.Key
		task string
	)

	cmd := &cobra.Command{
		Use:   "add <category> <task...>",
		Short: "Add an alert due on a day at a time of day.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("requires a category and a task")
			}
			k, err := categoryArg(args[0])
			if err != nil {
				return err
			}
			cat = k
			task = strings.Join(args[1:], " ")
			return nil
		},
		ValidArgsFunction: categoryCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if oo.OnString == "" || oo.AtString == "" {
				return errors.New("an alert needs both --on and --at")
			}
			date, err := oo.Date(time.Now())
			if err != nil {
				return err
			}
			clock, err := oo.Clock()
			if err != nil {
				return err
			}
			return runAlert(cmd, &alert.Alert{
				Action:   alert.Add,
				Category: cat,
				Task:     task,
				Date:     date,
				Clock:    clock,
			}, nil)
		},
	}

	options.AddOnArgs(cmd, oo, "deadline")
	cmd.Flags().StringVar(&oo.OnString, "date", "", "Alias for --on.")
	cmd.Flags().StringVar(&oo.AtString, "time", "", "Alias for --at.")
	parent.AddCommand(cmd)
}

func addAlertList(parent *cobra.Command) {
	io := &options.IDOptions{}
	wo := &options.WindowOptions{}
	soon := false

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List alerts, or only those due soon.",
		Example: `
lifelog alert list
lifelog alert list --soon
lifelog alert list --within 1w
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			n := &alert.Alert{Action: alert.List}
			if soon || wo.Window != "" {
				cfg, err := config.Load()
				if err != nil {
					return output.HandleError(err)
				}
				within, _, err := wo.Get(cfg.Alerts.Soon)
				if err != nil {
					return err
				}
				n.Within = within
			}
			return runAlert(cmd, n, io)
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddWindowArgs(cmd, wo, "within", `Only alerts due within this window, example: --within="2d" or "1w2d".`)
	cmd.Flags().BoolVar(&soon, "soon", false, "Only alerts due within alerts.soon, 48h unless configured.")
	parent.AddCommand(cmd)
}

func addAlertChange(parent *cobra.Command, use, short string, action alert.Action, aliases ...string) {
	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a category and an alert id")
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
			return runAlert(cmd, &alert.Alert{
				Action:   action,
				Category: cat,
				ID:       args[1],
			}, nil)
		},
	}

	parent.AddCommand(cmd)
}

func runAlert(cmd *cobra.Command, n *alert.Alert, ids *options.IDOptions) error {
	svc, _, err := open()
	if err != nil {
		return output.HandleError(err)
	}
	defer svc.Close()

	n.Service = svc
	n.Printer = printer(cmd.OutOrStdout(), ids)
	err = n.Do(context.Background())
	return output.HandleError(err)
}
