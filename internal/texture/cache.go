package texture

import (
	"image"
	"sync"

	"github.com/rs/zerolog"

	"vrm-pose-player/internal/avatar"
)

// Resolver resolves an avatar image index to a decoded RGBA image.
type Resolver interface {
	Resolve(image int) *image.NRGBA
}

// Cache is a concurrency-safe texture cache over the images embedded in
// (or referenced by) an avatar.
type Cache struct {
	mu     sync.RWMutex
	items  map[int]*cacheEntry
	images []avatar.Image
	log    zerolog.Logger
}

type cacheEntry struct {
	img    *image.NRGBA
	loaded bool // true if we've attempted to decode (img may still be nil)
}

// NewCache creates a texture cache for the given images.
func NewCache(images []avatar.Image, log zerolog.Logger) *Cache {
	return &Cache{
		items:  make(map[int]*cacheEntry),
		images: images,
		log:    log,
	}
}

// Resolve decodes and caches an image by index. Returns nil if the index is
// out of range or the image cannot be decoded.
func (c *Cache) Resolve(idx int) *image.NRGBA {
	if idx < 0 || idx >= len(c.images) {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[idx]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	// Slow path: decode
	src := c.images[idx]
	img, err := Decode(src.Data)
	if err != nil {
		c.log.Warn().Err(err).Int("image", idx).Str("name", src.Name).Msg("Texture decode failed")
	}

	// Write lock with double-check
	c.mu.Lock()
	if entry, exists := c.items[idx]; exists {
		c.mu.Unlock()
		return entry.img
	}
	c.items[idx] = &cacheEntry{img: img, loaded: true}
	c.mu.Unlock()

	return img
}

// Preload decodes every image up front so render workers never contend on
// the write lock.
func (c *Cache) Preload() {
	for i := range c.images {
		c.Resolve(i)
	}
}

// Len returns the number of images the cache can resolve.
func (c *Cache) Len() int {
	return len(c.images)
}
