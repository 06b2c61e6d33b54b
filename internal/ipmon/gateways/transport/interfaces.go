// Package transport serves rule exports, metrics and prefix lookups over HTTP.
// Handlers work on domain types; encoding and status mapping stay here.
package transport

import (
	"context"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// SnapshotSource supplies the most recent stored snapshot.
type SnapshotSource interface {
	// Latest returns the newest snapshot, or nil when none is stored.
	Latest(ctx context.Context) (*domain.Snapshot, error)
}

// MetricsSource computes the historical metrics series.
type MetricsSource interface {
	Run(ctx context.Context, window int, useCache bool) (domain.MetricsSeries, error)
}

// SightingIndex answers first-seen / last-seen queries for a prefix.
type SightingIndex interface {
	Lookup(prefix string) (domain.PrefixSighting, bool)
}
