package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/archviz/internal/mcptools"
)

func serveCmd(a *app) *cobra.Command {
	var (
		sf      storeFlags
		useHTTP bool
		listen  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio, or on streamable HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx, sf)
			if err != nil {
				return err
			}
			defer store.Close()

			server := mcptools.NewMCPServer(mcptools.NewService(a.cat, a.details, store, a.logger))
			if !useHTTP {
				a.logger.Debug("mcp serving on stdio")
				return mcptools.RunStdio(ctx, server)
			}
			if listen == "" {
				listen = a.cfg.Listen
			}
			return mcptools.RunHTTP(ctx, server, listen, a.logger)
		},
	}
	sf.register(cmd)
	cmd.Flags().BoolVar(&useHTTP, "http", false, "serve streamable HTTP instead of stdio")
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (default: listen from archviz.yml)")
	return cmd
}
