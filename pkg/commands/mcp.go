package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lifelog/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var (
		transport string
		addr      string
		path      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "start the Model Context Protocol server",
		Long: `Launch an MCP server that exposes notes, archives and alerts as tools,
over streamable HTTP or stdio.`,
		Example: `
lifelog mcp --transport stdio
lifelog mcp --addr 127.0.0.1:37779
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			svc, _, err := open()
			if err != nil {
				return err
			}
			defer svc.Close()

			t, err := mcp.ParseTransport(transport)
			if err != nil {
				return err
			}
			runner := mcp.Runner{
				Service:   svc,
				Version:   version,
				Transport: t,
				Addr:      strings.TrimSpace(addr),
				Path:      strings.TrimSpace(path),
				Listening: func(endpoint string) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", endpoint)
				},
			}

			ctx, cancel := interruptible()
			defer cancel()
			return runner.Do(ctx)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportHTTP), "transport to use: http or stdio")
	cmd.Flags().StringVar(&addr, "addr", mcp.DefaultAddr, "listen address for the HTTP transport")
	cmd.Flags().StringVar(&path, "http-path", mcp.DefaultPath, "HTTP endpoint path")

	topLevel.AddCommand(cmd)
}
