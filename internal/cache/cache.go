// Package cache persists processed documents on disk, keyed by file identity
// (path, size, modification time) rather than content.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"studymate/internal/domain"
)

// DocumentCache maps a file identity key to a previously processed Document.
// Entries live in dir as one indented JSON file per key. A process-local
// memory layer avoids re-reading the same entry within memoryTTL.
type DocumentCache struct {
	dir    string
	memory *gocache.Cache
	log    zerolog.Logger
}

// New creates a cache rooted at dir. A zero memoryTTL disables the memory layer.
func New(dir string, memoryTTL time.Duration, log zerolog.Logger) *DocumentCache {
	c := &DocumentCache{dir: dir, log: log}
	if memoryTTL > 0 {
		c.memory = gocache.New(memoryTTL, 2*memoryTTL)
	}
	return c
}

// Dir returns the cache root directory.
func (c *DocumentCache) Dir() string { return c.dir }

// Key derives the cache key for path from its size and modification time.
func Key(path string, info os.FileInfo) string {
	raw := fmt.Sprintf("%s_%d_%d", path, info.Size(), info.ModTime().UnixNano())
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached Document for path. It never inspects file content,
// so an edit that keeps both size and mtime is served stale.
// Any read or decode failure is logged and reported as a miss.
func (c *DocumentCache) Lookup(path string) (*domain.Document, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	key := Key(path, info)
	if c.memory != nil {
		if v, ok := c.memory.Get(key); ok {
			return v.(*domain.Document), true
		}
	}
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn().Err(err).Str("key", key).Msg("read cache entry")
		}
		return nil, false
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("decode cache entry")
		return nil, false
	}
	if c.memory != nil {
		c.memory.Set(key, &doc, gocache.DefaultExpiration)
	}
	return &doc, true
}

// Store persists doc under the key for path, creating the cache directory if needed.
// The entry is written to a temp file and renamed into place so concurrent writers
// of the same key leave one complete entry behind.
func (c *DocumentCache) Store(path string, doc *domain.Document) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	key := Key(path, info)
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry: %w", err)
	}
	if c.memory != nil {
		c.memory.Set(key, doc, gocache.DefaultExpiration)
	}
	c.log.Debug().Str("key", key).Str("path", path).Msg("cached document")
	return nil
}

func (c *DocumentCache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
