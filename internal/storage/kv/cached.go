package kv

import (
	"context"
	"errors"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used by NewCached when size is not positive.
const DefaultCacheSize = 1024

// CachedDB is a read-through LRU cache in front of another DB. Misses are not
// cached.
type CachedDB struct {
	db    DB
	cache *lru.Cache[string, []byte]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// NewCached wraps db with an LRU cache of size entries.
func NewCached(db DB, size int) (*CachedDB, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedDB{db: db, cache: cache}, nil
}

func (c *CachedDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if v, ok := c.cache.Get(string(key)); ok {
		c.hits.Add(1)
		return clone(v), nil
	}
	c.misses.Add(1)
	v, err := c.db.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(string(key), clone(v))
	return v, nil
}

func (c *CachedDB) Write(ctx context.Context, key, value []byte) error {
	if err := c.db.Write(ctx, key, value); err != nil {
		c.cache.Remove(string(key))
		return err
	}
	c.cache.Add(string(key), clone(value))
	return nil
}

func (c *CachedDB) Delete(ctx context.Context, key []byte) error {
	c.cache.Remove(string(key))
	return c.db.Delete(ctx, key)
}

func (c *CachedDB) Batch(ctx context.Context, ops []BatchOperation) error {
	for _, op := range ops {
		c.cache.Remove(string(op.Key))
	}
	return c.db.Batch(ctx, ops)
}

func (c *CachedDB) Iterator(ctx context.Context, prefix []byte) (Iterator, error) {
	return c.db.Iterator(ctx, prefix)
}

// Close purges the cache and closes the underlying database.
func (c *CachedDB) Close() error {
	c.cache.Purge()
	err := c.db.Close()
	if errors.Is(err, ErrDBClosed) {
		return nil
	}
	return err
}

// Stats returns hit and miss counters and the current entry count.
func (c *CachedDB) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.cache.Len(),
	}
}
