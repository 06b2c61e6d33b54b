package prefixes

import (
	"errors"
	"sort"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// Sightings folds a history into first-seen and last-seen dates per prefix,
// sorted by prefix. Malformed entries are skipped and reported joined.
func Sightings(history []domain.Snapshot) ([]domain.PrefixSighting, error) {
	seen := make(map[string]domain.PrefixSighting)
	var errs []error
	for _, snap := range history {
		set, err := Extract(snap)
		if err != nil {
			errs = append(errs, err)
		}
		for _, p := range set.Sorted() {
			s := seen[p]
			s.Prefix = p
			seen[p] = s.Observe(snap.Date)
		}
	}
	out := make([]domain.PrefixSighting, 0, len(seen))
	for _, s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prefix < out[j].Prefix })
	return out, errors.Join(errs...)
}
