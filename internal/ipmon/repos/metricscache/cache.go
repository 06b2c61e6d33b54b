// Package metricscache persists the last aggregated metrics series in a
// bbolt database.
package metricscache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/ipmon/internal/ipmon/domain"
	"github.com/haukened/ipmon/internal/ipmon/services/history"
)

var (
	bucketMetrics = []byte("metrics")
	keySeries     = []byte("series")
	keySaved      = []byte("saved")
)

// Cache is a bbolt-backed history.MetricsCache.
type Cache struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics cache %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMetrics)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Cache{db: db, now: time.Now}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Load returns the cached series. A missing entry is not an error.
func (c *Cache) Load() (domain.MetricsSeries, bool, error) {
	var series domain.MetricsSeries
	var found bool
	err := c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketMetrics).Get(keySeries)
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &series); err != nil {
			return fmt.Errorf("failed to decode cached metrics: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return domain.MetricsSeries{}, false, err
	}
	return series, found, nil
}

// Save replaces the cached series.
func (c *Cache) Save(series domain.MetricsSeries) error {
	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	saved := make([]byte, 8)
	binary.BigEndian.PutUint64(saved, uint64(c.now().Unix()))
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetrics)
		if err := b.Put(keySeries, data); err != nil {
			return err
		}
		return b.Put(keySaved, saved)
	})
}

// SavedAt returns when the series was last saved, zero if never.
func (c *Cache) SavedAt() time.Time {
	var t time.Time
	_ = c.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketMetrics).Get(keySaved); len(v) == 8 {
			t = time.Unix(int64(binary.BigEndian.Uint64(v)), 0).UTC()
		}
		return nil
	})
	return t
}

// Invalidate drops the cached series.
func (c *Cache) Invalidate() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetrics)
		if err := b.Delete(keySeries); err != nil {
			return err
		}
		return b.Delete(keySaved)
	})
}

var _ history.MetricsCache = (*Cache)(nil)
