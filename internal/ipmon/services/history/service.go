package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haukened/ipmon/internal/ipmon/common/clock"
	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// ServiceName is stamped into the metadata of every computed series.
const ServiceName = "ipmon-history"

type Service struct {
	cache   MetricsCache
	clock   clock.Clock
	logger  log.Logger
	source  SnapshotSource
	version string
}

type ServiceOptions struct {
	Cache   MetricsCache
	Clock   clock.Clock
	Logger  log.Logger
	Source  SnapshotSource
	Version string
}

func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("snapshot source is required")
	}
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Service{
		cache:   opts.Cache,
		clock:   opts.Clock,
		logger:  opts.Logger,
		source:  opts.Source,
		version: opts.Version,
	}, nil
}

// Run returns the metrics series for the last window days.
//
// With useCache set and a cached series available, the cached series is
// returned verbatim. Otherwise the history is recomputed, stamped and saved
// to the cache. Malformed snapshot entries are logged; the series still
// reflects every valid prefix.
func (s *Service) Run(ctx context.Context, window int, useCache bool) (domain.MetricsSeries, error) {
	if window <= 0 {
		return domain.MetricsSeries{}, fmt.Errorf("%w: %d", domain.ErrInvalidWindow, window)
	}
	if useCache && s.cache != nil {
		series, ok, err := s.cache.Load()
		switch {
		case err != nil:
			s.logger.Warn(map[string]any{"error": err}, "failed to load metrics cache, recomputing")
		case ok:
			fields := map[string]any{"points": series.Len()}
			if saved := s.cache.SavedAt(); !saved.IsZero() {
				fields["saved_at"] = saved.Format(time.RFC3339)
			}
			s.logger.Info(fields, "using cached metrics")
			return series, nil
		}
	}

	snaps, err := s.source.Recent(ctx, window)
	if err != nil {
		return domain.MetricsSeries{}, fmt.Errorf("failed to load snapshot history: %w", err)
	}
	series, err := Aggregate(snaps, window)
	if err != nil {
		if !errors.Is(err, domain.ErrMalformedEntry) {
			return domain.MetricsSeries{}, err
		}
		s.logger.Warn(map[string]any{"error": err}, "skipped malformed snapshot entries")
	}
	series.Metadata = &domain.Metadata{
		GeneratedAt: s.clock.Now().UTC().Format(time.RFC3339),
		Service:     ServiceName,
		Version:     s.version,
	}
	s.logger.Info(map[string]any{
		"points": series.Len(),
		"window": window,
	}, "aggregated snapshot history")

	if s.cache != nil {
		if err := s.cache.Save(series); err != nil {
			s.logger.Error(map[string]any{"error": err}, "failed to save metrics cache")
		}
	}
	return series, nil
}
