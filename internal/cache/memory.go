package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is a bounded LRU used when Redis is not configured
type MemoryCache struct {
	lru *expirable.LRU[string, string]
}

// NewMemoryCache creates an LRU holding at most capacity transcripts. A zero
// ttl keeps entries until they are evicted.
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryCache{lru: expirable.NewLRU[string, string](capacity, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, userID, mode string) (string, error) {
	transcript, ok := c.lru.Get(Key(userID, mode))
	if !ok {
		return "", ErrCacheMiss
	}
	return transcript, nil
}

func (c *MemoryCache) Set(_ context.Context, userID, mode, transcript string) error {
	c.lru.Add(Key(userID, mode), transcript)
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, userID, mode string) error {
	c.lru.Remove(Key(userID, mode))
	return nil
}

func (c *MemoryCache) InvalidateUser(_ context.Context, userID string) error {
	prefix := strings.TrimSuffix(userPattern(userID), "*")
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
	return nil
}

// Len returns the number of cached transcripts
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}
