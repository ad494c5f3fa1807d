package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"beacon-dashboard/internal/logging"
	"beacon-dashboard/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway and dashboard",
		Long: "Serve /api/survey-data with a short-lived cache over the board API, poll it " +
			"for the dashboard and render the charts at /.",
		Example: "  beacon serve --config config.yml\n" +
			"  MONDAY_API_TOKEN=... beacon serve --addr 0.0.0.0:8080",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.App.Addr = addr
			}

			logger := logging.New("server")
			app, err := server.Build(cfg, server.Options{ConfigPath: path, Logger: logger})
			if err != nil {
				return err
			}
			defer app.Close()
			logger.Printf("config=%s", path)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return app.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides app.addr)")
	return cmd
}
