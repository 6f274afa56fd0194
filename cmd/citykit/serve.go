package main

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rushteam/citykit/engine"
	"github.com/rushteam/citykit/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Example: `  citykit serve --config config.yaml
  CITYKIT_STORE_KIND=redis citykit serve --addr :9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			e, err := engine.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := e.Close(); err != nil {
					log.Error().Err(err).Msg("close engine")
				}
			}()

			srv := server.New(e, cfg.Server.Mode,
				server.WithAddr(cfg.Server.Addr),
				server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
			)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override server.addr")
	return cmd
}
