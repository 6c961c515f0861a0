// Package cache memoizes feature extraction by file content. A bounded
// in-memory LRU sits in front of an optional msgpack cache on disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"codeintel/internal/metrics"
)

// Increment when the payload or the feature vector layout changes.
const diskSchemaVersion uint16 = 1

// Key identifies one extraction result.
type Key [sha256.Size]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// DiskCache stores feature vectors as msgpack files named by key.
// Safe for concurrent use. A nil *DiskCache is a valid, empty cache.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type diskPayload struct {
	Schema   uint16                `json:"schema"`
	Features metrics.FeatureVector `json:"features"`
}

// OpenDiskCache creates dir if needed.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Key) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "features", hexKey[:2], hexKey+".mp")
}

// Put writes fv under key, replacing any previous entry atomically.
func (c *DiskCache) Put(key Key, fv metrics.FeatureVector) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	enc := msgpack.NewEncoder(f)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(&diskPayload{Schema: diskSchemaVersion, Features: fv}); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads the entry for key. Entries written by another schema version
// are reported as misses.
func (c *DiskCache) Get(key Key) (metrics.FeatureVector, bool, error) {
	if c == nil {
		return metrics.FeatureVector{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return metrics.FeatureVector{}, false, nil
		}
		return metrics.FeatureVector{}, false, err
	}
	defer f.Close()

	var payload diskPayload
	dec := msgpack.NewDecoder(f)
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&payload); err != nil {
		return metrics.FeatureVector{}, false, err
	}
	if payload.Schema != diskSchemaVersion {
		return metrics.FeatureVector{}, false, nil
	}
	return payload.Features, true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "features"))
}
