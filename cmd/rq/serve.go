package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/requery/internal/demo"
	"github.com/vango-dev/requery/internal/errors"
	"github.com/vango-dev/requery/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo app live",
		Long: `Serve a demo app. Every page load starts a session whose
bindings run on the server; the browser receives patches over a
WebSocket.

Examples:
  rq serve
  rq serve --app=counter --port=8080
  rq serve --config=deploy/rq.yaml --log-format=json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, flags)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	app, ok := demo.Lookup(cfg.App)
	if !ok {
		return errors.New("E123").WithDetailf("No app named %q", cfg.App)
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr())
	srv := server.New(app, &server.Config{
		Address:          cfg.Address(),
		MetricsPath:      cfg.Metrics.Path,
		MetricsNamespace: cfg.Metrics.Namespace,
		DisableMetrics:   !cfg.Metrics.Enabled,
	}, server.WithLogger(logger))

	out := cmd.OutOrStdout()
	printBanner(out)
	success(out, "Serving %s", app.Title())
	info(out, "Local:   %s", cfg.URL())
	if cfg.Metrics.Enabled {
		info(out, "Metrics: %s%s", cfg.URL(), cfg.Metrics.Path)
	}

	return srv.Run(ctx)
}
