package raster

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// Load reads an image file and converts it to a Raster.
//
// Parameters:
//   - path: Absolute or relative file path. Supported formats are PNG, JPEG,
//     GIF, TIFF and BMP.
//
// Returns:
//   - *Raster: The decoded pixels with alpha removed.
//   - error: Non-nil if the file cannot be opened or decoded. The error names
//     the path so the caller can report which input failed.
func Load(path string) (*Raster, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	return FromImage(img), nil
}

// Cache provides thread-safe caching of loaded rasters to avoid redundant disk reads.
//
// The cache stores decoded rasters keyed by their file path, together with
// the file's modification time and size at load time. Load re-reads a file
// whose modification time or size has changed, so edits made on disk between
// calls are always seen. Callers must treat cached rasters as read-only; use
// Clone() before mutating.
//
// # Memory Management
//
// A 5632x2048 map occupies about 35 MB as a Raster. Cached rasters remain in
// memory until explicitly removed via Evict() or Clear(), or replaced by a
// newer version of the same file.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	raster  *Raster
	modTime time.Time
	size    int64
}

func (e cacheEntry) matches(fi os.FileInfo) bool {
	return e.size == fi.Size() && e.modTime.Equal(fi.ModTime())
}

// NewCache creates and initializes a new empty raster cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
	}
}

// Load retrieves a raster from the cache or loads it from disk if it is not
// cached or the file changed since it was cached.
//
// The raster is cached using the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) result in separate entries.
func (c *Cache) Load(path string) (*Raster, error) {
	fi, err := os.Stat(path)
	if err != nil {
		c.Evict(path)
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.matches(fi) {
		return e.raster, nil
	}

	r, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{raster: r, modTime: fi.ModTime(), size: fi.Size()}
	c.mu.Unlock()

	return r, nil
}

// Clear removes all rasters from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Len returns the number of cached rasters.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
