package youtube

import "sync"

// PosterCache maps video identifiers to resolved poster URLs. It is
// shared across all provider sessions and append-only: posters do not
// change for the lifetime of a process. Implementations must be safe
// for concurrent use; last-writer-wins on duplicate inserts is fine
// since values for the same identifier are identical.
type PosterCache interface {
	Get(id VideoID) (string, bool)
	Put(id VideoID, url string)
}

// InMemoryPosterCache is the default in-memory PosterCache.
type InMemoryPosterCache struct {
	mu      sync.RWMutex
	posters map[VideoID]string
}

// NewInMemoryPosterCache returns a new empty cache.
func NewInMemoryPosterCache() *InMemoryPosterCache {
	return &InMemoryPosterCache{
		posters: make(map[VideoID]string),
	}
}

// Get implements PosterCache.Get.
func (c *InMemoryPosterCache) Get(id VideoID) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.posters[id]
	return url, ok
}

// Put implements PosterCache.Put.
func (c *InMemoryPosterCache) Put(id VideoID, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posters[id] = url
}
