package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haukened/ipmon/internal/ipmon/repos/exports"
	"github.com/haukened/ipmon/internal/ipmon/services/history"
)

var (
	aggregateWindow   int
	aggregateUseCache bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate stored snapshots into historical metrics",
	Long: `Aggregates the most recent snapshots into a daily metrics series and
writes charts/historical_metrics.csv, charts/historical_metrics.json and
charts/summary.md into the export directory.

With --use-cache the last computed series is reused when one is cached.`,
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().IntVarP(&aggregateWindow, "window", "w", 0, "number of most recent snapshots to aggregate (default from config)")
	aggregateCmd.Flags().BoolVar(&aggregateUseCache, "use-cache", false, "reuse the cached metrics series when present")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	window := cfg.Window
	if cmd.Flags().Changed("window") {
		window = aggregateWindow
	}
	useCache := cfg.UseCache
	if cmd.Flags().Changed("use-cache") {
		useCache = aggregateUseCache
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	svc, err := app.buildHistory()
	if err != nil {
		return err
	}
	series, err := svc.Run(cmd.Context(), window, useCache)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	writer, err := exports.NewWriter(cfg.ExportDir)
	if err != nil {
		return err
	}

	now := app.clock.Now()
	csvOut, err := history.RenderCSV(series)
	if err != nil {
		return fmt.Errorf("failed to render csv: %w", err)
	}
	jsonOut, err := history.RenderJSON(series, now, version)
	if err != nil {
		return fmt.Errorf("failed to render json: %w", err)
	}
	summary, err := history.RenderSummaryMarkdown(series, now, version)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}

	for _, out := range []struct{ name, content string }{
		{history.CSVFileName, csvOut},
		{history.JSONFileName, jsonOut},
		{history.SummaryFileName, summary},
	} {
		path, err := writer.WriteChart(out.name, out.content)
		if err != nil {
			return err
		}
		cmd.Printf("wrote %s\n", path)
	}

	cmd.Printf("Aggregated %d snapshots: %d current ranges, growth %+d\n",
		series.Len(), series.Summary.CurrentTotal, series.Summary.TotalGrowth)
	return nil
}
