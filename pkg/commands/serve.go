package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/server"
	"tableflip.dev/lifelog/pkg/store"
)

func addServe(topLevel *cobra.Command) {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API.",
		Example: `
lifelog serve
lifelog serve --addr 0.0.0.0:37778
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, cfg, err := open()
			if err != nil {
				return err
			}
			defer svc.Close()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			ctx, cancel := interruptible()
			defer cancel()
			logger := store.DefaultLogger()
			logger.Printf("store: %s at %s", cfg.Backend, cfg.Path)
			srv := server.New(svc, version, logger)
			srv.Summary = cfg.Server.Summary
			return srv.ListenAndServe(ctx, addr, cfg.Board.Tick)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; defaults to server.addr.")
	topLevel.AddCommand(cmd)
}
