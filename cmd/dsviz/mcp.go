package main

import (
	"github.com/spf13/cobra"

	"github.com/rendis/dsviz/pkg/mcp"
)

func newMCPCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the visualizer as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			// stdout carries the protocol, so logs go to stderr only.
			logger, _ := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcp.NewServer(mcp.ServerDeps{
				Service: a.svc,
				Hub:     a.hub,
				JQ:      a.jq,
				Logger:  logger,
			})
			return srv.Serve(cmd.Context())
		},
	}
}
