package prefixindex

// StoreStats reports lightweight store metrics and metadata.
// Values are read from the store in a cheap, read-only transaction.
type StoreStats struct {
	Prefixes    uint64 // number of indexed prefixes
	LastDate    string // newest observed snapshot date ("" if none)
	UpdatedUnix int64  // last updated unix time (0 if unknown)
}

// RepoStats exposes repository-level counters and underlying store stats.
type RepoStats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	CacheSize  int
	BloomSkips uint64 // lookups answered negative by the Bloom filter alone
	Store      StoreStats
}
