package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through a memory layer in front of a durable backend
type LayeredCache struct {
	memory    Cache
	durable   Cache
	memoryTTL time.Duration
}

// NewLayeredCache creates a layered cache. Entries promoted from the durable
// layer live in memory for memoryTTL.
func NewLayeredCache(memory, durable Cache, memoryTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory:    memory,
		durable:   durable,
		memoryTTL: memoryTTL,
	}
}

// Get checks memory first, then the durable layer
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, found, _ := c.memory.Get(ctx, key); found {
		return val, true, nil
	}

	val, found, err := c.durable.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// Promote to memory
	_ = c.memory.Set(ctx, key, val, c.promoteTTL(0))
	return val, true, nil
}

// Set stores a value in both layers
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(ctx, key, value, c.promoteTTL(ttl)); err != nil {
		return err
	}
	return c.durable.Set(ctx, key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.memory.Delete(ctx, key), c.durable.Delete(ctx, key))
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear(ctx context.Context) error {
	return errors.Join(c.memory.Clear(ctx), c.durable.Clear(ctx))
}

// Close releases both layers
func (c *LayeredCache) Close() error {
	return errors.Join(c.memory.Close(), c.durable.Close())
}

// promoteTTL keeps memory entries no longer than the durable ones
func (c *LayeredCache) promoteTTL(ttl time.Duration) time.Duration {
	if ttl > 0 && (c.memoryTTL <= 0 || ttl < c.memoryTTL) {
		return ttl
	}
	return c.memoryTTL
}
