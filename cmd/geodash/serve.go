package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/geodash/pkg/httpserver"
	"github.com/dmitrymomot/geodash/pkg/logger"
)

// serveCmd starts the dashboard and serves its router until interrupted.
func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard state over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.dash.Start(ctx); err != nil {
				// The API stays useful without layers; reload via POST /layers/{id}/reload.
				a.log.WarnContext(ctx, "initial layer load", logger.Error(err))
			}

			opts := []httpserver.Option{httpserver.WithLogger(a.log)}
			if addr != "" {
				opts = append(opts, httpserver.WithAddr(addr))
			}
			srv := httpserver.NewFromConfig(a.cfg.HTTP, opts...)
			return srv.Run(ctx, a.dash.Router())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides GEODASH_HTTP_ADDR)")
	return cmd
}
