package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/enetx/wizard/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wizard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pages, err := a.pages()
			if err != nil {
				return err
			}

			rec, err := a.recommender()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Pages:   pages,
				Advisor: rec,
				Intake:  a.intake(),
				Context: ctx,

				SessionTTL:          a.cfg.Sessions.TTL,
				MaxSessions:         a.cfg.Sessions.Max,
				MaxSessionsPerOwner: a.cfg.Sessions.PerOwner,
			})

			if listen == "" {
				listen = a.cfg.Listen
			}

			return srv.Run(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides config)")

	return cmd
}
