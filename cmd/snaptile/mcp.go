package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/snaptile/internal/logging"
	"github.com/1broseidon/snaptile/internal/mcp"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.
The snaptile daemon must be running; every tool call is forwarded to it.`,
		Example: "  claude mcp add snaptile -- snaptile mcp serve",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := mcp.NewServer(opts.client(), logging.FromContext(ctx))
			return server.Run(ctx)
		},
	})
	return cmd
}
