// Package monitor runs the daily capture: fetch the provider documents,
// store them, compare with the previous capture and report the change.
package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/haukened/ipmon/internal/ipmon/common/clock"
	"github.com/haukened/ipmon/internal/ipmon/common/log"
	"github.com/haukened/ipmon/internal/ipmon/domain"
	"github.com/haukened/ipmon/internal/ipmon/services/prefixes"
)

// ErrNoData is returned when every source failed to fetch. Nothing is saved.
var ErrNoData = errors.New("no provider data fetched")

// Result describes one monitor run.
type Result struct {
	Date         string
	PreviousDate string
	Delta        domain.Delta
	Report       string
	Notified     bool
}

// Bootstrap reports whether no earlier snapshot was available.
func (r Result) Bootstrap() bool { return r.PreviousDate == "" }

type Service struct {
	clock    clock.Clock
	fetcher  Fetcher
	index    PrefixRecorder
	logger   log.Logger
	metrics  MetricsInvalidator
	notifier Notifier
	store    SnapshotStore
}

type Options struct {
	// required
	Fetcher Fetcher
	Store   SnapshotStore
	// optional
	Clock    clock.Clock
	Index    PrefixRecorder
	Logger   log.Logger
	Metrics  MetricsInvalidator
	Notifier Notifier
}

func NewService(opts Options) (*Service, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Service{
		clock:    opts.Clock,
		fetcher:  opts.Fetcher,
		index:    opts.Index,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
		store:    opts.Store,
	}, nil
}

// Run performs one capture for today's UTC date.
//
// Partial fetch failures are logged and the run continues with the sources
// that succeeded. Metrics cache, notification and index failures are logged
// and do not fail the run; the snapshot is already stored by then.
func (s *Service) Run(ctx context.Context) (Result, error) {
	today := clock.Today(s.clock)
	s.logger.Info(map[string]any{"date": today}, "fetching provider data")

	payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Warn(map[string]any{"error": err}, "some sources failed to fetch")
	}
	current := domain.SnapshotFromRaw(today, payload)
	if current.IsEmpty() {
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		return Result{}, ErrNoData
	}

	if err := s.store.Save(ctx, today, payload); err != nil {
		return Result{}, fmt.Errorf("failed to save snapshot %s: %w", today, err)
	}
	s.invalidateMetrics()

	previous, err := s.store.Previous(ctx, today)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	delta, err := prefixes.DiffSnapshots(previous, current)
	if err != nil {
		s.logger.Warn(map[string]any{"error": err}, "skipped malformed snapshot entries")
	}

	res := Result{Date: today, Delta: delta, Report: FormatReport(delta, today)}
	if previous != nil {
		res.PreviousDate = previous.Date
	}
	s.logger.Info(map[string]any{
		"added":    len(delta.Added),
		"removed":  len(delta.Removed),
		"previous": res.PreviousDate,
		"total":    delta.CurrentCount,
	}, "compared snapshots")

	res.Notified = s.notify(ctx, res.Report)
	s.record(today, current)
	return res, nil
}

func (s *Service) notify(ctx context.Context, report string) bool {
	if s.notifier == nil || !s.notifier.Enabled() {
		s.logger.Info(nil, "notifier not configured, skipping report delivery")
		return false
	}
	if err := s.notifier.Send(ctx, report); err != nil {
		s.logger.Error(map[string]any{"error": err}, "failed to send report")
		return false
	}
	return true
}

func (s *Service) record(date string, snap domain.Snapshot) {
	if s.index == nil {
		return
	}
	set, _ := prefixes.Extract(snap)
	if err := s.index.Record(date, set.Sorted()); err != nil {
		s.logger.Error(map[string]any{"error": err}, "failed to update prefix index")
	}
}

// invalidateMetrics drops the cached series so the next aggregation includes
// the snapshot just stored.
func (s *Service) invalidateMetrics() {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.Invalidate(); err != nil {
		s.logger.Error(map[string]any{"error": err}, "failed to invalidate metrics cache")
	}
}
