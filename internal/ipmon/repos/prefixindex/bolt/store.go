package bolt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/ipmon/internal/ipmon/domain"
	"github.com/haukened/ipmon/internal/ipmon/repos/prefixindex"
)

var (
	bucketSightings = []byte("sightings")
	bucketMeta      = []byte("meta")

	keyLastDate = []byte("last_date")
	keyUpdated  = []byte("updated")
)

// sightingValue is the stored form of a sighting; the prefix is the key.
type sightingValue struct {
	FirstSeen string `json:"f"`
	LastSeen  string `json:"l"`
}

// boltStore implements prefixindex.Store using bbolt.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (prefixindex.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSightings); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func (s *boltStore) Get(prefix string) (domain.PrefixSighting, bool, error) {
	var out domain.PrefixSighting
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketSightings).Get([]byte(prefix))
		if v == nil {
			return nil
		}
		var sv sightingValue
		if err := json.Unmarshal(v, &sv); err != nil {
			return err
		}
		out = domain.PrefixSighting{Prefix: prefix, FirstSeen: sv.FirstSeen, LastSeen: sv.LastSeen}
		found = true
		return nil
	})
	return out, found, err
}

// Observe widens every prefix's sighting to include date in one transaction.
func (s *boltStore) Observe(date string, prefixes []string, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSightings)
		for _, p := range prefixes {
			cur := domain.PrefixSighting{Prefix: p}
			if v := b.Get([]byte(p)); v != nil {
				var sv sightingValue
				if err := json.Unmarshal(v, &sv); err != nil {
					return err
				}
				cur.FirstSeen, cur.LastSeen = sv.FirstSeen, sv.LastSeen
			}
			if err := putSighting(b, cur.Observe(date)); err != nil {
				return err
			}
		}
		return setMeta(tx.Bucket(bucketMeta), date, updatedUnix)
	})
}

// ReplaceAll drops the sightings bucket and writes sightings in its place.
func (s *boltStore) ReplaceAll(sightings []domain.PrefixSighting, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketSightings); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(bucketSightings)
		if err != nil {
			return err
		}
		meta := tx.Bucket(bucketMeta)
		if err := meta.Delete(keyLastDate); err != nil {
			return err
		}
		var last string
		for _, sg := range sightings {
			if err := putSighting(b, sg); err != nil {
				return err
			}
			if sg.LastSeen > last {
				last = sg.LastSeen
			}
		}
		return setMeta(meta, last, updatedUnix)
	})
}

func (s *boltStore) VisitPrefixes(visit func(prefix string) bool) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketSightings).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if !visit(string(k)) {
				return nil
			}
		}
		return nil
	})
}

func (s *boltStore) Stats() prefixindex.StoreStats {
	st := prefixindex.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketSightings); b != nil {
			st.Prefixes = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			st.LastDate = string(b.Get(keyLastDate))
			if v := b.Get(keyUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

func putSighting(b *bbolt.Bucket, sg domain.PrefixSighting) error {
	v, err := json.Marshal(sightingValue{FirstSeen: sg.FirstSeen, LastSeen: sg.LastSeen})
	if err != nil {
		return err
	}
	return b.Put([]byte(sg.Prefix), v)
}

// setMeta records the newest observed date (never moving it backwards) and
// the update time.
func setMeta(b *bbolt.Bucket, date string, updatedUnix int64) error {
	if date != "" && date > string(b.Get(keyLastDate)) {
		if err := b.Put(keyLastDate, []byte(date)); err != nil {
			return err
		}
	}
	ubuf := make([]byte, 8)
	binary.BigEndian.PutUint64(ubuf, uint64(updatedUnix))
	return b.Put(keyUpdated, ubuf)
}
