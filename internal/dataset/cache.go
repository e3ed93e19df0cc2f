package dataset

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds one loaded Dataset per path. Entries are shared read-only;
// a changed file is picked up only after Invalidate.
type Cache struct {
	load func(path string) (*Dataset, error)

	mu      sync.RWMutex
	entries map[string]*Dataset
	// gens counts invalidations per key. A load only stores its result if no
	// Invalidate happened while it ran.
	gens  map[string]uint64
	group singleflight.Group
}

func NewCache(loader *Loader) *Cache {
	return &Cache{
		load:    loader.Load,
		entries: make(map[string]*Dataset),
		gens:    make(map[string]uint64),
	}
}

// Get returns the cached dataset for path, loading it on first use. Load
// errors are returned to every waiting caller and are not cached.
func (c *Cache) Get(ctx context.Context, path string) (*Dataset, error) {
	key := cacheKey(path)
	c.mu.RLock()
	ds, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return ds, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.RLock()
		existing, ok := c.entries[key]
		gen := c.gens[key]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}
		loaded, err := c.load(path)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[key] == gen {
			c.entries[key] = loaded
		}
		c.mu.Unlock()
		return loaded, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

// Invalidate drops the entry for path so the next Get reloads the file. A
// load already running is not stored.
func (c *Cache) Invalidate(path string) {
	key := cacheKey(path)
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
	c.group.Forget(key)
}

func cacheKey(path string) string {
	return filepath.Clean(path)
}
