package samples

import (
	"fmt"
	"sync"
)

// Cache is the process-wide decode cache: sample path to decoded asset,
// already resampled to the target rate. It is constructed once at process
// start and injected into the resolver and renderer; decoded assets are
// immutable, so readers after population need no further synchronization.
type Cache struct {
	store      Store
	targetRate int

	mu     sync.Mutex
	assets map[string]*Asset
}

// NewCache creates a cache reading through the given store.
func NewCache(store Store, targetRate int) *Cache {
	return &Cache{
		store:      store,
		targetRate: targetRate,
		assets:     make(map[string]*Asset),
	}
}

// Get returns the decoded asset for a sample path, decoding at most once
// per key. Concurrent first access is serialized by the lock; the decode
// work is cheap enough (a few seconds of mono PCM) that holding it is fine.
func (c *Cache) Get(path string) (*Asset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if asset, ok := c.assets[path]; ok {
		return asset, nil
	}

	raw, err := c.store.Read(path)
	if err != nil {
		return nil, err
	}
	asset, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if asset.SampleRate != c.targetRate {
		asset = &Asset{
			Data:       Resample(asset.Data, asset.SampleRate, c.targetRate),
			SampleRate: c.targetRate,
		}
	}

	c.assets[path] = asset
	return asset, nil
}

// Len returns the number of cached assets, for diagnostics.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.assets)
}
