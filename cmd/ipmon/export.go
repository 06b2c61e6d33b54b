package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haukened/ipmon/internal/ipmon/domain"
	"github.com/haukened/ipmon/internal/ipmon/repos/exports"
	"github.com/haukened/ipmon/internal/ipmon/services/prefixes"
	"github.com/haukened/ipmon/internal/ipmon/services/rules"
)

var exportFormats []string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the latest snapshot as firewall rule files",
	Long: `Renders the prefixes of the most recent snapshot into every supported
rule format (iptables, aws, azure, cisco, pfsense, mikrotik, plaintext, csv,
json) and writes them into the export directory. Use --format to limit the
output to selected formats.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", nil, "formats to render (default all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	formats := make([]domain.Format, 0, len(exportFormats))
	for _, name := range exportFormats {
		f, err := domain.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	snap, err := app.snaps.Latest(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	if snap == nil {
		return fmt.Errorf("no snapshots in %s, run monitor first", app.snaps.Dir())
	}

	set, err := prefixes.Extract(*snap)
	if err != nil {
		app.logger.Warn(map[string]any{"date": snap.Date, "error": err.Error()}, "skipped malformed snapshot entries")
	}
	in := rules.InputFromSet(set, app.clock.Now())

	var docs map[domain.Format]domain.RuleDocument
	if len(formats) == 0 {
		docs, err = rules.ProjectAll(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("failed to render rules: %w", err)
		}
	} else {
		docs = make(map[domain.Format]domain.RuleDocument, len(formats))
		for _, f := range formats {
			doc, err := rules.Project(f, in)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", f, err)
			}
			docs[f] = doc
		}
	}

	for f, doc := range docs {
		for _, skipped := range doc.Skipped {
			app.logger.Warn(map[string]any{"format": f.String(), "error": skipped.Error()}, "prefix skipped")
		}
	}

	writer, err := exports.NewWriter(cfg.ExportDir)
	if err != nil {
		return err
	}
	paths, err := writer.WriteDocuments(docs)
	if err != nil {
		return err
	}
	for _, p := range paths {
		cmd.Printf("wrote %s\n", p)
	}
	cmd.Printf("Exported %d IPv4 and %d IPv6 ranges from %s\n", len(in.IPv4), len(in.IPv6), snap.Date)
	return nil
}
