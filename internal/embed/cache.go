package embed

import (
	"sync"

	"github.com/alnah/go-doc2substack/internal/mathimg"
)

type cacheKey struct {
	latex string
	dpi   int
}

type cacheEntry struct {
	ref mathimg.Ref
	err error
}

// Cache deduplicates image requests for identical (latex, dpi) pairs within
// one document. Failures are cached too, so a broken expression costs one
// request. Create one per conversion; it is never persisted.
type Cache struct {
	mu       sync.Mutex
	entries  map[cacheKey]cacheEntry
	requests int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Requests returns how many renders reached the renderer.
func (c *Cache) Requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}

func (c *Cache) get(latex string, dpi int, render func() (mathimg.Ref, error)) (mathimg.Ref, error) {
	key := cacheKey{latex: latex, dpi: dpi}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.ref, e.err
	}
	c.requests++
	c.mu.Unlock()

	ref, err := render()

	c.mu.Lock()
	c.entries[key] = cacheEntry{ref: ref, err: err}
	c.mu.Unlock()
	return ref, err
}
