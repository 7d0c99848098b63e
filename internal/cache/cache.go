// Package cache stores extracted statement text in a bbolt database keyed
// by the SHA-256 digest of the source file.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var pagesBucket = []byte("pages")

// Cache is safe for concurrent use.
type Cache struct {
	db *bolt.DB
}

type entry struct {
	Pages       []string  `json:"pages"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pagesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the pages stored under key.
func (c *Cache) Get(key string) ([]string, bool, error) {
	var e entry
	var found bool
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(pagesBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return e.Pages, found, nil
}

// Put stores pages under key, replacing any previous entry.
func (c *Cache) Put(key string, pages []string) error {
	data, err := json.Marshal(entry{Pages: pages, ExtractedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pagesBucket).Put([]byte(key), data)
	})
}

// Len returns the number of cached entries.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(pagesBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
