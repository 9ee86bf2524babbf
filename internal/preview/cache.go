package preview

import (
	"sync"

	"effects-studio/internal/opencv/safe"
)

const DefaultCacheCapacity = 32

type cacheEntry struct {
	fingerprint string
	mat         *safe.Mat
}

// Cache memoizes rendered previews keyed by configuration fingerprint.
// Eviction is strictly first-in first-out and the whole cache is
// dropped when a new source image arrives, because fingerprints do not
// encode image identity. Entries are cloned on the way in and out so
// cached Mats never escape ownership.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*cacheEntry
	order    []string

	hits   uint64
	misses uint64
}

func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry, capacity),
		order:    make([]string, 0, capacity),
	}
}

// Get returns a copy of the cached Mat for the fingerprint, or false
// when the entry is absent. The caller owns the returned Mat.
func (c *Cache) Get(fingerprint string) (*safe.Mat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fingerprint]
	if !ok {
		c.misses++
		return nil, false
	}

	clone, err := entry.mat.Clone()
	if err != nil {
		// A cached Mat that cannot be cloned is poisoned. Drop it and
		// report a miss so the caller re-renders.
		c.removeLocked(fingerprint)
		c.misses++
		return nil, false
	}

	c.hits++
	return clone, true
}

// Put stores a copy of the Mat under the fingerprint, evicting the
// oldest insertion once the capacity is reached. Re-putting an
// existing fingerprint replaces the pixels but keeps its original
// position in the eviction order.
func (c *Cache) Put(fingerprint string, mat *safe.Mat) error {
	clone, err := mat.Clone()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[fingerprint]; ok {
		existing.mat.Close()
		existing.mat = clone
		return nil
	}

	for len(c.order) >= c.capacity {
		c.removeLocked(c.order[0])
	}

	c.entries[fingerprint] = &cacheEntry{fingerprint: fingerprint, mat: clone}
	c.order = append(c.order, fingerprint)
	return nil
}

// Clear drops every entry. Called when the source image changes.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries {
		entry.mat.Close()
	}
	c.entries = make(map[string]*cacheEntry, c.capacity)
	c.order = c.order[:0]
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports lifetime hit and miss counts.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Cache) removeLocked(fingerprint string) {
	entry, ok := c.entries[fingerprint]
	if !ok {
		return
	}
	entry.mat.Close()
	delete(c.entries, fingerprint)

	for i, fp := range c.order {
		if fp == fingerprint {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
