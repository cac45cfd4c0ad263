package tts

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Cache is a two-tier (memory, then disk) store of synthesized WAV
// payloads keyed by sha256(voice + ":" + text). Changing the voice misses
// the cache until it is switched back.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	voice   string
	dir     string // empty disables the disk layer
	logger  *slog.Logger

	hits   int64
	misses int64
}

// NewCache creates a cache. dir is created if it does not exist.
func NewCache(voice, dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		entries: make(map[string][]byte),
		voice:   voice,
		dir:     dir,
		logger:  logger.With("component", "tts.cache"),
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.logger.Error("cannot create cache dir, disk layer disabled", "dir", dir, "error", err)
			c.dir = ""
		}
	}
	return c
}

// Get returns the cached WAV for text.
func (c *Cache) Get(text string) ([]byte, bool) {
	key := c.key(text)

	c.mu.RLock()
	data, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.count(true)
		return data, true
	}

	if c.dir != "" {
		if data, err := os.ReadFile(c.path(key)); err == nil {
			c.mu.Lock()
			c.entries[key] = data
			c.mu.Unlock()
			c.count(true)
			c.logger.Debug("cache hit (disk)", "key", key[:12], "bytes", len(data))
			return data, true
		}
	}

	c.count(false)
	return nil, false
}

// Put stores the WAV for text in memory and, when enabled, on disk.
func (c *Cache) Put(text string, data []byte) {
	key := c.key(text)

	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		c.logger.Warn("cache disk write failed", "key", key[:12], "error", err)
	}
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *Cache) count(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		c.misses++
		cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (c *Cache) key(text string) string {
	h := sha256.Sum256([]byte(c.voice + ":" + text))
	return hex.EncodeToString(h[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}
