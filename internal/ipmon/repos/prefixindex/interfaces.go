package prefixindex

import "github.com/haukened/ipmon/internal/ipmon/domain"

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
	Clear()
}

// BloomFactory builds filters sized for a dataset.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// SightingCache caches sightings by prefix with basic metrics.
type SightingCache interface {
	Get(prefix string) (domain.PrefixSighting, bool)
	Put(prefix string, s domain.PrefixSighting)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}

// Store is the persistent sighting index.
//   - Get: sighting for one exact prefix
//   - Observe: widen sightings of the given prefixes to include date
//   - ReplaceAll: atomically replace every sighting
//   - VisitPrefixes: iterate stored prefixes in key order until visit returns false
type Store interface {
	Get(prefix string) (domain.PrefixSighting, bool, error)
	Observe(date string, prefixes []string, updatedUnix int64) error
	ReplaceAll(sightings []domain.PrefixSighting, updatedUnix int64) error
	VisitPrefixes(visit func(prefix string) bool) error
	Stats() StoreStats
	Close() error
}
