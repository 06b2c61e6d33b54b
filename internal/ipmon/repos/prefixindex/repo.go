// Package prefixindex answers "when was this prefix published" from a
// persistent sighting index, fronted by a Bloom filter and an LRU cache.
package prefixindex

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/haukened/ipmon/internal/ipmon/common/clock"
	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// Repository composes a Store, a Bloom filter (via factory) and a
// SightingCache. Reads go bloom → cache → store; writes go to the store
// first, then refresh the Bloom filter and purge the cache under lock.
type Repository struct {
	mu         sync.RWMutex
	store      Store
	cache      SightingCache
	bloom      BloomFilter
	factory    BloomFactory
	fpRate     float64
	clock      clock.Clock
	bloomSkips uint64
	// gen counts index writes; guarded by mu
	gen uint64
}

type Options struct {
	Store   Store
	Cache   SightingCache
	Factory BloomFactory
	// FPRate is the target false-positive rate used when sizing the Bloom filter.
	FPRate float64
	Clock  clock.Clock
}

// NewRepository constructs a Repository and primes the Bloom filter from
// the prefixes already in the store.
func NewRepository(opts Options) (*Repository, error) {
	if opts.Store == nil || opts.Cache == nil || opts.Factory == nil {
		return nil, fmt.Errorf("prefix index needs a store, cache and bloom factory")
	}
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	r := &Repository{
		store:   opts.Store,
		cache:   opts.Cache,
		factory: opts.Factory,
		fpRate:  opts.FPRate,
		clock:   opts.Clock,
	}
	if err := r.refreshBloom(); err != nil {
		return nil, err
	}
	return r, nil
}

// Lookup returns the sighting for an exact prefix literal.
// Store errors are reported as a miss.
func (r *Repository) Lookup(prefix string) (domain.PrefixSighting, bool) {
	// 1) checkBloom: definitely absent
	if !r.checkBloom(prefix) {
		atomic.AddUint64(&r.bloomSkips, 1)
		return domain.PrefixSighting{}, false
	}
	// 2) checkCache
	if s, ok := r.checkCache(prefix); ok {
		return s, true
	}
	// 3) checkStore
	r.mu.RLock()
	gen := r.gen
	r.mu.RUnlock()
	s, ok, err := r.store.Get(prefix)
	if err != nil || !ok {
		return domain.PrefixSighting{}, false
	}
	// 4) updateCache, unless a write landed while the store was read
	r.mu.Lock()
	if r.gen == gen {
		r.cache.Put(prefix, s)
	}
	r.mu.Unlock()
	return s, true
}

// Record widens the sightings of prefixes to include date.
func (r *Repository) Record(date string, prefixes []string) error {
	if _, err := clock.ParseDateKey(date); err != nil {
		return fmt.Errorf("invalid sighting date %q: %w", date, err)
	}
	if err := r.store.Observe(date, prefixes, r.clock.Now().Unix()); err != nil {
		return fmt.Errorf("failed to record sightings for %s: %w", date, err)
	}
	return r.refreshBloom()
}

// Rebuild replaces the whole index with sightings.
func (r *Repository) Rebuild(sightings []domain.PrefixSighting) error {
	for _, s := range sightings {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid sighting for %q: %w", s.Prefix, err)
		}
	}
	if err := r.store.ReplaceAll(sightings, r.clock.Now().Unix()); err != nil {
		return fmt.Errorf("failed to rebuild prefix index: %w", err)
	}
	return r.refreshBloom()
}

// Stats returns cache counters and store metadata.
func (r *Repository) Stats() RepoStats {
	r.mu.RLock()
	hits, misses, evictions := r.cache.Stats()
	size := r.cache.Len()
	r.mu.RUnlock()
	return RepoStats{
		Hits:       hits,
		Misses:     misses,
		Evictions:  evictions,
		CacheSize:  size,
		BloomSkips: atomic.LoadUint64(&r.bloomSkips),
		Store:      r.store.Stats(),
	}
}

func (r *Repository) Close() error { return r.store.Close() }

// refreshBloom builds a fresh filter sized for the store, then swaps it in,
// purges the cache and bumps the write generation.
func (r *Repository) refreshBloom() error {
	n := r.store.Stats().Prefixes
	bf := r.factory.New(n, r.fpRate)
	if err := r.store.VisitPrefixes(func(prefix string) bool {
		bf.Add([]byte(prefix))
		return true
	}); err != nil {
		return fmt.Errorf("failed to load prefix index: %w", err)
	}

	r.mu.Lock()
	r.bloom = bf
	r.cache.Purge()
	r.gen++
	r.mu.Unlock()
	return nil
}

// checkBloom returns true if the store should be consulted (maybe-positive).
func (r *Repository) checkBloom(prefix string) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	return bf.MightContain([]byte(prefix))
}

func (r *Repository) checkCache(prefix string) (domain.PrefixSighting, bool) {
	r.mu.RLock()
	s, ok := r.cache.Get(prefix)
	r.mu.RUnlock()
	return s, ok
}
