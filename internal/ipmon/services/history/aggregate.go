// Package history turns an ordered snapshot history into a metrics series
// and renders that series for export.
package history

import (
	"errors"
	"fmt"

	"github.com/haukened/ipmon/internal/ipmon/domain"
	"github.com/haukened/ipmon/internal/ipmon/services/prefixes"
)

// Aggregate computes the metrics series for the most recent window
// snapshots of history. history is ordered by date on a copy before the
// window is applied; the caller's slice is left untouched.
//
// The first point in the window always reports zero daily changes, even when
// older snapshots exist outside the window: the window boundary truncates
// history. A snapshot with malformed entries still contributes its valid
// prefixes; the conditions are returned joined alongside the full series.
func Aggregate(history []domain.Snapshot, window int) (domain.MetricsSeries, error) {
	if window <= 0 {
		return domain.MetricsSeries{}, fmt.Errorf("%w: %d", domain.ErrInvalidWindow, window)
	}
	history = append([]domain.Snapshot(nil), history...)
	domain.SortSnapshots(history)
	if len(history) > window {
		history = history[len(history)-window:]
	}

	series := domain.EmptyMetricsSeries()
	var errs []error
	var previous *domain.PrefixSet
	for _, snap := range history {
		current, err := prefixes.Extract(snap)
		if err != nil {
			errs = append(errs, err)
		}
		delta := prefixes.Diff(previous, current)

		series.Timestamps = append(series.Timestamps, snap.Date)
		series.TotalRanges = append(series.TotalRanges, current.Len())
		series.IPv4Counts = append(series.IPv4Counts, len(current.IPv4()))
		series.IPv6Counts = append(series.IPv6Counts, len(current.IPv6()))
		series.DailyAdded = append(series.DailyAdded, len(delta.Added))
		series.DailyRemoved = append(series.DailyRemoved, len(delta.Removed))

		previous = &current
	}
	series.Summary = summarize(series)
	return series, errors.Join(errs...)
}

func summarize(m domain.MetricsSeries) domain.Summary {
	n := m.Len()
	if n == 0 {
		return domain.Summary{}
	}
	first, last := m.Timestamps[0], m.Timestamps[n-1]
	s := domain.Summary{
		TotalDataPoints: n,
		DateRange:       domain.DateRange{Start: &first, End: &last},
		CurrentTotal:    m.TotalRanges[n-1],
		CurrentIPv4:     m.IPv4Counts[n-1],
		CurrentIPv6:     m.IPv6Counts[n-1],
	}
	if n > 1 {
		s.TotalGrowth = m.TotalRanges[n-1] - m.TotalRanges[0]
	}
	added := 0
	for _, a := range m.DailyAdded {
		added += a
	}
	s.AvgDailyChange = float64(added) / float64(n)
	return s
}
