package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haukened/ipmon/internal/ipmon/services/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Capture today's provider documents and report changes",
	Long: `Fetches every configured source, stores today's snapshot, compares it
with the most recent earlier snapshot and prints the change report. The
report is also sent to Telegram when credentials are configured, and the
prefix index is updated with today's prefixes. The cached metrics series
is dropped so the next aggregate includes today.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	fetcher, err := app.buildFetcher()
	if err != nil {
		return err
	}
	index, err := app.buildIndex()
	if err != nil {
		return err
	}
	metrics, err := app.buildMetricsCache()
	if err != nil {
		return err
	}

	svc, err := monitor.NewService(monitor.Options{
		Fetcher:  fetcher,
		Store:    app.snaps,
		Clock:    app.clock,
		Index:    index,
		Logger:   app.logger,
		Metrics:  metrics,
		Notifier: app.buildNotifier(),
	})
	if err != nil {
		return err
	}

	res, err := svc.Run(cmd.Context())
	if errors.Is(err, monitor.ErrNoData) {
		return fmt.Errorf("monitor run failed, nothing saved: %w", err)
	}
	if err != nil {
		return fmt.Errorf("monitor run failed: %w", err)
	}

	cmd.Println(res.Report)
	if res.Bootstrap() {
		cmd.Printf("\nFirst snapshot stored for %s.\n", res.Date)
	}
	return nil
}
