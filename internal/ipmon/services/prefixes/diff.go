package prefixes

import (
	"errors"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// Diff compares a previous prefix set with the current one.
//
// A nil previous set is the bootstrap case: no comparison is possible, so
// Added and Removed are both empty and PreviousCount is zero. This keeps a
// first run from reporting every published prefix as new.
//
// Otherwise Added and Removed are exact string set differences, sorted
// ascending. Equal sets short-circuit to an unchanged delta.
func Diff(previous *domain.PrefixSet, current domain.PrefixSet) domain.Delta {
	if previous == nil {
		return domain.Delta{
			Added:         []string{},
			Removed:       []string{},
			PreviousCount: 0,
			CurrentCount:  current.Len(),
		}
	}
	if previous.Equal(current) {
		return domain.Delta{
			Added:         []string{},
			Removed:       []string{},
			PreviousCount: previous.Len(),
			CurrentCount:  current.Len(),
		}
	}
	return domain.Delta{
		Added:         current.Minus(*previous),
		Removed:       previous.Minus(current),
		PreviousCount: previous.Len(),
		CurrentCount:  current.Len(),
	}
}

// DiffSnapshots extracts both snapshots and compares them. A nil previous
// snapshot is the bootstrap case. Malformed entries in either snapshot are
// returned alongside the delta computed from the valid prefixes.
func DiffSnapshots(previous *domain.Snapshot, current domain.Snapshot) (domain.Delta, error) {
	cur, curErr := Extract(current)
	if previous == nil {
		return Diff(nil, cur), curErr
	}
	prev, prevErr := Extract(*previous)
	return Diff(&prev, cur), errors.Join(prevErr, curErr)
}
