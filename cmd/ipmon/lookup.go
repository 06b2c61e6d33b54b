package main

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haukened/ipmon/internal/ipmon/domain"
	"github.com/haukened/ipmon/internal/ipmon/repos/prefixindex"
	"github.com/haukened/ipmon/internal/ipmon/services/prefixes"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <prefix|address>",
	Short: "Show which published ranges contain an address, and since when",
	Long: `Looks up a CIDR prefix or a single IP address against the most recent
snapshot and the prefix index. A prefix reports whether it is currently
published and when it was first and last seen; an address reports every
current prefix that contains it.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the prefix index from every stored snapshot",
	RunE:  runReindex,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])

	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	snap, err := app.snaps.Latest(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	set := domain.NewPrefixSet()
	if snap != nil {
		if set, err = prefixes.Extract(*snap); err != nil {
			app.logger.Warn(map[string]any{"date": snap.Date, "error": err.Error()}, "skipped malformed snapshot entries")
		}
	}

	index, err := app.buildIndex()
	if err != nil {
		return err
	}

	if strings.Contains(query, "/") {
		if _, err := netip.ParsePrefix(query); err != nil {
			return fmt.Errorf("invalid prefix %q: %w", query, err)
		}
		printSighting(cmd, index, query, set.Contains(query))
		return nil
	}

	found, err := prefixes.Containing(set, query)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		cmd.Printf("%s is not in any current range\n", query)
		return nil
	}
	for _, p := range found {
		printSighting(cmd, index, p, true)
	}
	return nil
}

func printSighting(cmd *cobra.Command, index *prefixindex.Repository, prefix string, current bool) {
	status := "not published"
	if current {
		status = "published"
	}
	sighting, ok := index.Lookup(prefix)
	if !ok {
		cmd.Printf("%-24s %s\n", prefix, status)
		return
	}
	cmd.Printf("%-24s %s  first seen %s  last seen %s\n", prefix, status, sighting.FirstSeen, sighting.LastSeen)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	app, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	all, err := app.snaps.All(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}
	sightings, err := prefixes.Sightings(all)
	if err != nil {
		app.logger.Warn(map[string]any{"error": err.Error()}, "skipped malformed snapshot entries")
	}

	index, err := app.buildIndex()
	if err != nil {
		return err
	}
	if err := index.Rebuild(sightings); err != nil {
		return fmt.Errorf("failed to rebuild prefix index: %w", err)
	}
	cmd.Printf("Indexed %d prefixes from %d snapshots\n", len(sightings), len(all))
	return nil
}
