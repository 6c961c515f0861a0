package cache

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"codeintel/internal/logging"
	"codeintel/internal/metrics"
)

// FeatureExtractor is satisfied by *metrics.Extractor.
type FeatureExtractor interface {
	Extract(ctx context.Context, path string) (metrics.FeatureVector, error)
}

// Extractor returns cached feature vectors for files whose name and content
// were seen before, and delegates to the wrapped extractor otherwise.
type Extractor struct {
	inner FeatureExtractor
	mem   *lru.Cache[Key, metrics.FeatureVector]
	disk  *DiskCache
	salt  string
}

// NewExtractor wraps inner. size bounds the in-memory cache and zero
// disables it; disk may be nil. salt is mixed into every key and should
// change whenever extraction settings change.
func NewExtractor(inner FeatureExtractor, size int, disk *DiskCache, salt string) (*Extractor, error) {
	e := &Extractor{inner: inner, disk: disk, salt: salt}
	if size > 0 {
		mem, err := lru.New[Key, metrics.FeatureVector](size)
		if err != nil {
			return nil, err
		}
		e.mem = mem
	}
	return e, nil
}

// KeyFor derives the cache key of a file from its base name and content.
func KeyFor(salt, path string, content []byte) Key {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte{0})
	h.Write([]byte(filepath.Base(path)))
	h.Write([]byte{0})
	h.Write(content)
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Extract implements FeatureExtractor. Cache failures are logged and never
// fail the extraction.
func (e *Extractor) Extract(ctx context.Context, path string) (metrics.FeatureVector, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		// Let the wrapped extractor report the access error.
		return e.inner.Extract(ctx, path)
	}
	key := KeyFor(e.salt, path, content)

	if e.mem != nil {
		if fv, ok := e.mem.Get(key); ok {
			return fv, nil
		}
	}
	fv, ok, err := e.disk.Get(key)
	if err != nil {
		logging.WarnLogger.Printf("feature cache read %s: %v", key, err)
	}
	if ok {
		e.remember(key, fv)
		return fv, nil
	}

	fv, err = e.inner.Extract(ctx, path)
	if err != nil {
		return metrics.FeatureVector{}, err
	}
	e.remember(key, fv)
	if err := e.disk.Put(key, fv); err != nil {
		logging.WarnLogger.Printf("feature cache write %s: %v", key, err)
	}
	return fv, nil
}

func (e *Extractor) remember(key Key, fv metrics.FeatureVector) {
	if e.mem != nil {
		e.mem.Add(key, fv)
	}
}
