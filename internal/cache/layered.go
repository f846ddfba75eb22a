package cache

import (
	"errors"
	"time"

	"github.com/ppiankov/slangspace/internal/model"
)

// LayeredCache reads memory before disk and writes both
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache builds the memory and disk layers from cfg
func NewLayeredCache(cfg model.CacheConfig) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(cfg.MemoryTTL, 10*time.Minute),
		disk:   NewDiskCache(cfg.Dir, cfg.DiskTTL),
	}
}

// Get promotes disk hits into memory
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set writes memory first; a memory entry survives a failed disk write
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
