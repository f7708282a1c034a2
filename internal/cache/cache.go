// Package cache is a TTL disk cache for downloaded text blobs (TSV,
// CSV, JSON). BLS flat files run to hundreds of megabytes and the
// upstream hosts block aggressive re-downloads, so every bulk fetch
// goes through here.
package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultTTL matches the upstream publication cadence closely enough
// for interactive use.
const DefaultTTL = 24 * time.Hour

// Cache stores blobs as files under Dir, keyed by the SHA-256 of the
// logical key. Freshness is judged by file mtime against TTL.
type Cache struct {
	Dir string
	TTL time.Duration
}

// New returns a disk cache rooted at dir. A zero ttl means DefaultTTL.
func New(dir string, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Cache{Dir: dir, TTL: ttl}
}

// Get returns the cached blob for key, or ok=false when the entry is
// missing or older than TTL.
func (c *Cache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) >= c.TTL {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	zap.L().Debug("cache hit",
		zap.String("key", key),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
	)
	return data, true
}

// Put stores a blob under key, writing via a temp file and rename so
// readers never observe a partial entry.
func (c *Cache) Put(key string, data []byte) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return eris.Wrap(err, "cache: create dir")
	}

	tmp, err := os.CreateTemp(c.Dir, ".cache-*")
	if err != nil {
		return eris.Wrap(err, "cache: create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "cache: write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "cache: close temp file")
	}

	if err := os.Rename(tmpPath, c.path(key)); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "cache: rename into place")
	}
	return nil
}

// path maps a logical key to its on-disk location. Hashing keeps URL
// keys filesystem-safe regardless of length or characters.
func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.Dir, fmt.Sprintf("%x", sum))
}
