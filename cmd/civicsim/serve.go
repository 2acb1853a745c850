package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/civicsim/internal/api"
	"github.com/talgya/civicsim/internal/config"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stateless HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cat, err := a.cfg.Catalog(ctx)
			if err != nil {
				return err
			}
			srv := &api.Server{
				Catalog:      cat,
				Port:         a.cfg.APIPort,
				CORSOrigins:  a.cfg.CORSOrigins,
				ReplayRate:   a.cfg.ReplayRate,
				ReplayWindow: a.cfg.ReplayWindow,

				TrustedProxies: a.cfg.TrustedProxies,
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().Int("port", 8080, "HTTP listen port")
	bindFlags(a.v, cmd, map[string]string{config.KeyAPIPort: "port"})
	return cmd
}
