package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/qforms"
	"github.com/njchilds90/qforms/internal/server"
)

// =============================================================================
// SERVE - HTTP tool server
// =============================================================================

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool interface over HTTP",
		Long: `Starts the HTTP tool server:
  POST /tool    execute a tool call
  GET  /schema  tool schema for agent registration
  GET  /health  liveness check
  GET  /metrics prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.table()
			if err != nil {
				return err
			}
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			srv := server.New(cfg, qforms.NewTools(table, a.logger), a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides the config file)")
	return cmd
}
