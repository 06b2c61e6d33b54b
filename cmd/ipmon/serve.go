package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haukened/ipmon/internal/ipmon/gateways/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rule exports, metrics and lookups over HTTP",
	Long: `Starts an HTTP server on listen_addr exposing:

  GET /healthz
  GET /exports/{format}
  GET /metrics
  GET /lookup?q=<prefix|address>

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	svc, err := app.buildHistory()
	if err != nil {
		return err
	}
	index, err := app.buildIndex()
	if err != nil {
		return err
	}

	srv, err := transport.NewHTTPServer(transport.Options{
		Addr:      cfg.ListenAddr,
		Snapshots: app.snaps,
		Metrics:   svc,
		Index:     index,
		Clock:     app.clock,
		Logger:    app.logger,
		Window:    cfg.Window,
		UseCache:  cfg.UseCache,
		Version:   version,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	cmd.Printf("%s %s listening on http://%s\n", appName, version, srv.Address())

	<-ctx.Done()
	app.logger.Info(nil, "shutdown initiated")
	if err := srv.Stop(); err != nil {
		app.logger.Warn(map[string]any{"error": err.Error()}, "error during HTTP shutdown")
	}
	app.logger.Info(nil, "server stopped gracefully")
	return nil
}
