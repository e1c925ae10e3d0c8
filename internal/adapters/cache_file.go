package adapters

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"purl2src/internal/ports"
	"purl2src/internal/types"
)

const (
	defaultCacheTTL        = time.Hour
	defaultCacheMaxEntries = 1024
)

type cacheEnvelope struct {
	Result    types.ResolutionResult `json:"result"`
	Timestamp time.Time              `json:"timestamp"`
}

// FileCacheAdapter memoizes resolution results in memory with an
// optional disk tier under the cache directory. Disk write failures
// degrade the adapter to memory-only instead of failing resolution.
type FileCacheAdapter struct {
	Dir        string
	TTL        time.Duration
	MaxEntries int

	mu      sync.Mutex
	entries map[string]cacheEnvelope
	now     func() time.Time
}

// NewFileCacheAdapter creates the cache. An empty dir disables the
// disk tier.
func NewFileCacheAdapter(dir string, ttl time.Duration, maxEntries int) *FileCacheAdapter {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultCacheMaxEntries
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("cache directory unavailable, using memory only")
			dir = ""
		}
	}
	return &FileCacheAdapter{
		Dir:        dir,
		TTL:        ttl,
		MaxEntries: maxEntries,
		entries:    map[string]cacheEnvelope{},
		now:        time.Now,
	}
}

// DefaultCacheDir returns the per-user cache location.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "purl2src")
}

func (c *FileCacheAdapter) Get(key string) (types.ResolutionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	envelope, ok := c.entries[key]
	if !ok {
		envelope, ok = c.readFile(key)
		if !ok {
			return types.ResolutionResult{}, false
		}
		c.entries[key] = envelope
	}
	if c.now().Sub(envelope.Timestamp) > c.TTL {
		delete(c.entries, key)
		c.removeFile(key)
		return types.ResolutionResult{}, false
	}
	return envelope.Result, true
}

func (c *FileCacheAdapter) Set(key string, result types.ResolutionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.MaxEntries {
		c.evictOldestLocked()
	}
	envelope := cacheEnvelope{Result: result, Timestamp: c.now()}
	c.entries[key] = envelope
	c.writeFile(key, envelope)
}

// evictOldestLocked drops the stalest entry to keep the map bounded.
func (c *FileCacheAdapter) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for key, envelope := range c.entries {
		if first || envelope.Timestamp.Before(oldestAt) {
			oldestKey = key
			oldestAt = envelope.Timestamp
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.removeFile(oldestKey)
	}
}

func (c *FileCacheAdapter) readFile(key string) (cacheEnvelope, bool) {
	if c.Dir == "" {
		return cacheEnvelope{}, false
	}
	path := c.filePath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return cacheEnvelope{}, false
	}
	var envelope cacheEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Corrupt entries are removed so they stop shadowing writes.
		os.Remove(path)
		return cacheEnvelope{}, false
	}
	return envelope, true
}

func (c *FileCacheAdapter) writeFile(key string, envelope cacheEnvelope) {
	if c.Dir == "" {
		return
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.filePath(key), data, 0o644); err != nil {
		log.Warn().Err(err).Msg("cache write failed, continuing memory only")
		c.Dir = ""
	}
}

func (c *FileCacheAdapter) removeFile(key string) {
	if c.Dir == "" {
		return
	}
	os.Remove(c.filePath(key))
}

func (c *FileCacheAdapter) filePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.Dir, hex.EncodeToString(sum[:8])+".json")
}

var _ ports.ResultCachePort = (*FileCacheAdapter)(nil)
