package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/ipmon/internal/ipmon/domain"
	"github.com/haukened/ipmon/internal/ipmon/repos/prefixindex"
)

// sightingCache is an LRU-backed prefixindex.SightingCache tracking hits,
// misses and evictions.
type sightingCache struct {
	lru       *lru.Cache[string, domain.PrefixSighting]
	hits      uint64
	misses    uint64
	evictions uint64
}

// disabledCache is a no-op SightingCache used when size <= 0.
type disabledCache struct{}

// New creates a SightingCache with the given capacity. If size <= 0, a
// disabled no-op cache is returned that always misses and tracks no metrics.
func New(size int) (prefixindex.SightingCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	var sc sightingCache
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := lru.NewWithEvict(size, func(_ string, _ domain.PrefixSighting) {
		atomic.AddUint64(&sc.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	sc.lru = cache
	return &sc, nil
}

func (c *sightingCache) Get(prefix string) (domain.PrefixSighting, bool) {
	if val, ok := c.lru.Get(prefix); ok {
		atomic.AddUint64(&c.hits, 1)
		return val, true
	}
	atomic.AddUint64(&c.misses, 1)
	return domain.PrefixSighting{}, false
}

func (c *sightingCache) Put(prefix string, s domain.PrefixSighting) {
	c.lru.Add(prefix, s)
}

func (c *sightingCache) Len() int { return c.lru.Len() }

// Purge clears all entries. Evictions are counted via the eviction callback.
func (c *sightingCache) Purge() { c.lru.Purge() }

func (c *sightingCache) Stats() (hits, misses, evictions uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses), atomic.LoadUint64(&c.evictions)
}

func (d *disabledCache) Get(string) (domain.PrefixSighting, bool) {
	return domain.PrefixSighting{}, false
}

func (d *disabledCache) Put(string, domain.PrefixSighting) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Purge() {}

func (d *disabledCache) Stats() (uint64, uint64, uint64) { return 0, 0, 0 }

var _ prefixindex.SightingCache = (*sightingCache)(nil)
var _ prefixindex.SightingCache = (*disabledCache)(nil)
