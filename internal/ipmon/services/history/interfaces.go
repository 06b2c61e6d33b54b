package history

import (
	"context"
	"time"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// SnapshotSource supplies the stored snapshot history.
type SnapshotSource interface {
	// Recent returns at most n of the most recent snapshots, ordered by date.
	// Snapshots that cannot be read are skipped.
	Recent(ctx context.Context, n int) ([]domain.Snapshot, error)
}

// MetricsCache persists the last computed metrics series.
type MetricsCache interface {
	// Load returns the cached series and whether one was present.
	Load() (domain.MetricsSeries, bool, error)
	Save(series domain.MetricsSeries) error
	// SavedAt returns when the series was last saved, zero if never.
	SavedAt() time.Time
}
