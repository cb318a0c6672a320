package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adda-Baaj/lekha/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	draftBucket      = "drafts"
	sessionBucket    = "session"
	sessionTokenKey  = "token"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Draft values are an 8 byte
// big-endian expiry followed by the JSON encoded draft.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	draftTTL        time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{draftBucket, sessionBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		draftTTL:        opts.DraftTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SaveDraft stores or replaces the draft under its key.
func (b *boltStore) SaveDraft(d domain.Draft) error {
	if b == nil || b.db == nil {
		return nil
	}
	if d.Key == "" {
		return fmt.Errorf("draft key is empty")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now.UTC()
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	buf := make([]byte, expiryValueBytes, expiryValueBytes+len(raw))
	binary.BigEndian.PutUint64(buf, uint64(now.Add(b.draftTTL).Unix()))
	buf = append(buf, raw...)

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(draftBucket))
		if bucket == nil {
			return fmt.Errorf("draft bucket missing")
		}
		return bucket.Put([]byte(d.Key), buf)
	})
}

// LoadDraft returns the draft for key if it exists and has not expired.
func (b *boltStore) LoadDraft(key string) (domain.Draft, bool, error) {
	if b == nil || b.db == nil {
		return domain.Draft{}, false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return domain.Draft{}, false, err
	}

	var (
		draft domain.Draft
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(draftBucket))
		if bucket == nil {
			return fmt.Errorf("draft bucket missing")
		}

		k := []byte(key)
		value := bucket.Get(k)
		if value == nil {
			return nil
		}

		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(now) {
			return bucket.Delete(k)
		}
		if err := json.Unmarshal(value[expiryValueBytes:], &draft); err != nil {
			return fmt.Errorf("decode draft %q: %w", key, err)
		}
		found = true
		return nil
	})
	return draft, found, err
}

// DeleteDraft removes the draft for key.
func (b *boltStore) DeleteDraft(key string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(draftBucket))
		if bucket == nil {
			return fmt.Errorf("draft bucket missing")
		}
		return bucket.Delete([]byte(key))
	})
}

// Drafts lists the unexpired drafts in key order.
func (b *boltStore) Drafts() ([]domain.Draft, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	var out []domain.Draft
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(draftBucket))
		if bucket == nil {
			return fmt.Errorf("draft bucket missing")
		}
		return bucket.ForEach(func(k, v []byte) error {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				return nil
			}
			var d domain.Draft
			if err := json.Unmarshal(v[expiryValueBytes:], &d); err != nil {
				return fmt.Errorf("decode draft %q: %w", k, err)
			}
			out = append(out, d)
			return nil
		})
	})
	return out, err
}

// SaveSession stores the bearer token of the signed-in user.
func (b *boltStore) SaveSession(token string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return bucket.Put([]byte(sessionTokenKey), []byte(token))
	})
}

// Session returns the stored bearer token or "".
func (b *boltStore) Session() (string, error) {
	if b == nil || b.db == nil {
		return "", nil
	}
	var token string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		token = string(bucket.Get([]byte(sessionTokenKey)))
		return nil
	})
	return token, err
}

// ClearSession forgets the bearer token.
func (b *boltStore) ClearSession() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return bucket.Delete([]byte(sessionTokenKey))
	})
}

// maybeCleanupExpired removes expired drafts on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(draftBucket))
		if bucket == nil {
			return fmt.Errorf("draft bucket missing")
		}

		// Deleting through the cursor while iterating skips the following key.
		var expired [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry prefix of a stored value.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
