// Package cache keeps compiled WASM clients on disk, keyed by a hash of the
// sources they were built from, so the dev server rebuilds only when an input
// actually changed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const indexVersion = "2"

// Cache is an on-disk artifact store with least-recently-used eviction.
type Cache struct {
	mu      sync.RWMutex
	dir     string
	index   *Index
	maxSize int64
	stats   Stats
}

// Index is persisted as index.json in the cache directory.
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one cached artifact.
type Entry struct {
	Key          string    `json:"key"`
	Hash         string    `json:"hash"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Created      time.Time `json:"created"`
	LastAccess   time.Time `json:"last_access"`
	AccessCount  int       `json:"access_count"`
	Dependencies []string  `json:"dependencies,omitempty"`
}

// Stats counts cache traffic since New.
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// Config holds cache configuration.
type Config struct {
	Dir     string // default: $HOME/.cache/vango-zoom
	MaxSize int64  // bytes; 0 means unlimited
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Dir:     filepath.Join(homeDir, ".cache", "vango-zoom"),
		MaxSize: 256 << 20,
	}
}

// New opens the cache in config.Dir, creating it if needed. A missing or
// unreadable index starts the cache empty.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config = DefaultConfig()
	}
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:     config.Dir,
		maxSize: config.MaxSize,
		index:   newIndex(),
	}
	if err := c.loadIndex(); err != nil {
		c.index = newIndex()
	}
	return c, nil
}

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Get returns the artifact stored under key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		c.deleteLocked(key)
		c.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.AccessCount++
	c.stats.Hits++
	_ = c.saveIndexLocked()
	return data, true
}

// Put stores data under key, evicting least recently used entries to stay
// within the size limit.
func (c *Cache) Put(key string, data []byte) error {
	return c.PutWithDeps(key, data, nil)
}

// PutWithDeps stores data under key and records the files it was built from
// so InvalidateByDependency can drop it.
func (c *Cache) PutWithDeps(key string, data []byte, deps []string) error {
	hash := hashBytes(data)
	size := int64(len(data))

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.index.Entries[key]; ok && existing.Hash == hash {
		existing.Dependencies = deps
		return c.saveIndexLocked()
	}
	c.deleteLocked(key)
	c.evictLocked(size)

	path := filepath.Join(c.dir, "artifacts", fmt.Sprintf("%s_%s", sanitizeKey(key), hash[:8]))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	c.index.Entries[key] = &Entry{
		Key:          key,
		Hash:         hash,
		Path:         path,
		Size:         size,
		Created:      now,
		LastAccess:   now,
		Dependencies: deps,
	}
	c.stats.TotalSize += size
	c.stats.EntryCount = len(c.index.Entries)
	return c.saveIndexLocked()
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.deleteLocked(key) {
		return nil
	}
	return c.saveIndexLocked()
}

// InvalidateByDependency drops every entry built from path, or from a file
// under path when path is a directory. It returns the number dropped.
func (c *Cache) InvalidateByDependency(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strings.TrimSuffix(path, string(filepath.Separator)) + string(filepath.Separator)
	count := 0
	for key, entry := range c.index.Entries {
		for _, d := range entry.Dependencies {
			if d == path || strings.HasPrefix(d, prefix) {
				c.deleteLocked(key)
				count++
				break
			}
		}
	}
	if count > 0 {
		_ = c.saveIndexLocked()
	}
	return count
}

// Clear removes all cached entries.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, "artifacts")); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	c.index = newIndex()
	c.stats = Stats{}
	return c.saveIndexLocked()
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Key hashes inputs into a cache key. Inputs are length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		fmt.Fprintf(h, "%d:", len(input))
		h.Write([]byte(input))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// KeyFromFiles hashes the names and contents of files.
func KeyFromFiles(files ...string) (string, error) {
	inputs := make([]string, 0, 2*len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		inputs = append(inputs, filepath.ToSlash(file), string(data))
	}
	return Key(inputs...), nil
}

func (c *Cache) deleteLocked(key string) bool {
	entry, ok := c.index.Entries[key]
	if !ok {
		return false
	}
	_ = os.Remove(entry.Path)
	delete(c.index.Entries, key)
	c.stats.TotalSize -= entry.Size
	c.stats.EntryCount = len(c.index.Entries)
	return true
}

func (c *Cache) evictLocked(needed int64) {
	if c.maxSize <= 0 {
		return
	}
	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		var oldest *Entry
		for _, entry := range c.index.Entries {
			if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
				oldest = entry
			}
		}
		c.deleteLocked(oldest.Key)
		c.stats.Evictions++
	}
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion || index.Entries == nil {
		return fmt.Errorf("cache index version %q", index.Version)
	}

	c.index = &index
	for _, entry := range index.Entries {
		c.stats.TotalSize += entry.Size
	}
	c.stats.EntryCount = len(index.Entries)
	return nil
}

func (c *Cache) saveIndexLocked() error {
	c.index.Updated = time.Now()
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sanitizeKey(key string) string {
	if len(key) > 32 {
		key = key[:32]
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
}
