// Package imageinfo reads the natural pixel size of image files without
// decoding the pixels. The size feeds the zoom upscaling ceiling.
package imageinfo

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/recera/vango-zoom/pkg/zoom"
)

// ErrUnsupported is returned for files no registered decoder recognises.
var ErrUnsupported = errors.New("unsupported image format")

// Info is the header of one image.
type Info struct {
	Format string    `json:"format" yaml:"format"`
	Size   zoom.Size `json:"size" yaml:"size"`
}

// Decode reads just enough of r to learn the format and size.
func Decode(r io.Reader) (Info, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Info{}, ErrUnsupported
		}
		return Info{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	return Info{
		Format: format,
		Size:   zoom.Size{Width: float64(cfg.Width), Height: float64(cfg.Height)},
	}, nil
}

// Probe opens path and decodes its header.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := Decode(f)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// Cache memoises Probe by path. An entry is refreshed when the file's
// modification time changes, so the dev server picks up replaced images.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	modTime time.Time
	info    Info
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Probe returns the cached header of path, reading the file on a miss.
func (c *Cache) Probe(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.modTime.Equal(st.ModTime()) {
		return e.info, nil
	}

	info, err := Probe(path)
	if err != nil {
		return Info{}, err
	}
	c.mu.Lock()
	c.entries[path] = cacheEntry{modTime: st.ModTime(), info: info}
	c.mu.Unlock()
	return info, nil
}

// Evict drops path from the cache.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
