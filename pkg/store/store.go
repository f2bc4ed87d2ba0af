// Package store persists the dictionary in an embedded bbolt database so a
// restarted server comes back with the last published entries. The
// "entries" bucket maps a big-endian sequence number to a msgpack-encoded
// entry, which keeps registration order; "meta" holds the snapshot version
// and save time. Every save replaces the bucket in one transaction.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/bastiangx/acroserve/pkg/dictionary"
)

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")
	keyVersion    = []byte("version")
	keySavedAt    = []byte("saved_at")
)

// ErrCorrupt is returned when a stored record cannot be decoded.
var ErrCorrupt = errors.New("corrupt store record")

// Store is a bbolt-backed dictionary store.
type Store struct {
	db   *bolt.DB
	path string
}

// Info describes the persisted state.
type Info struct {
	Path    string
	Entries int
	Version uint64
	SavedAt time.Time
}

// Open opens (or creates) a bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEntries replaces the stored entries with entries, tagged with version.
func (s *Store) SaveEntries(version uint64, entries []dictionary.Entry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketEntries) != nil {
			if err := tx.DeleteBucket(bucketEntries); err != nil {
				return fmt.Errorf("clear entries: %w", err)
			}
		}
		b, err := tx.CreateBucket(bucketEntries)
		if err != nil {
			return fmt.Errorf("create entries bucket: %w", err)
		}
		for i, e := range entries {
			val, err := msgpack.Marshal(&e)
			if err != nil {
				return fmt.Errorf("marshal entry %q: %w", e.Key, err)
			}
			if err := b.Put(seqKey(uint64(i)), val); err != nil {
				return fmt.Errorf("put entry %q: %w", e.Key, err)
			}
		}

		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		if err := meta.Put(keyVersion, seqKey(version)); err != nil {
			return err
		}
		stamp, err := time.Now().UTC().MarshalBinary()
		if err != nil {
			return err
		}
		return meta.Put(keySavedAt, stamp)
	})
}

// LoadEntries returns the stored entries in registration order and their
// version. A fresh store yields nil, 0, nil.
func (s *Store) LoadEntries() ([]dictionary.Entry, uint64, error) {
	var (
		entries []dictionary.Entry
		version uint64
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		if meta := tx.Bucket(bucketMeta); meta != nil {
			if v := meta.Get(keyVersion); len(v) == 8 {
				version = binary.BigEndian.Uint64(v)
			}
		}
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var e dictionary.Entry
			if err := msgpack.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("%w: record %x: %v", ErrCorrupt, k, err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return entries, version, nil
}

// Info reports what is stored without decoding the entries.
func (s *Store) Info() (Info, error) {
	info := Info{Path: s.path}
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketEntries); b != nil {
			info.Entries = b.Stats().KeyN
		}
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return nil
		}
		if v := meta.Get(keyVersion); len(v) == 8 {
			info.Version = binary.BigEndian.Uint64(v)
		}
		if v := meta.Get(keySavedAt); v != nil {
			if err := info.SavedAt.UnmarshalBinary(v); err != nil {
				return fmt.Errorf("%w: saved_at: %v", ErrCorrupt, err)
			}
		}
		return nil
	})
	return info, err
}

func seqKey(n uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, n)
	return k
}
