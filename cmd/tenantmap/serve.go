package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nisimpson/tenantmap/contextquery"
	"github.com/nisimpson/tenantmap/internal/httpapi"
	"github.com/spf13/cobra"
)

func serveCMD(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			srv := httpapi.New(a.resolver, contextquery.New(a.store), httpapi.Options{
				Logger:         a.log,
				RequestTimeout: a.cfg.HTTP.RequestTimeout,
				RetryBackoff:   a.cfg.HTTP.RetryBackoff,
				ServiceName:    a.cfg.Tracing.ServiceName,
			})

			return srv.Run(ctx, a.cfg.HTTP.ListenAddr, a.cfg.HTTP.ShutdownTimeout)
		},
	}
}
