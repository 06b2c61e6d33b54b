package monitor

import (
	"context"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// Fetcher retrieves the current provider documents.
type Fetcher interface {
	// Fetch returns the decoded payload keyed by source name. Every configured
	// source is present in the map; a source that failed maps to nil and its
	// failure is included in the returned error.
	Fetch(ctx context.Context) (map[string]any, error)
}

// SnapshotStore persists dated provider payloads.
type SnapshotStore interface {
	Save(ctx context.Context, date string, payload map[string]any) error
	// Previous returns the most recent snapshot dated strictly before date,
	// or nil when none exists.
	Previous(ctx context.Context, date string) (*domain.Snapshot, error)
}

// Notifier delivers a change report.
type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, text string) error
}

// PrefixRecorder tracks when each prefix was published.
type PrefixRecorder interface {
	Record(date string, prefixes []string) error
}

// MetricsInvalidator drops derived metrics once a new snapshot is stored.
type MetricsInvalidator interface {
	Invalidate() error
}
