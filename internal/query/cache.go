package query

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// resultCacheSize bounds the number of distinct query results memoized
// per graph snapshot. Small and fixed: repeated identical navigate/find/
// impact calls against the same snapshot are the common case (an
// assistant re-asking about the same symbol), not a working-set that
// needs tuning.
const resultCacheSize = 512

// Cache memoizes query results for a single immutable graph snapshot
// (§5). It is never shared across snapshots: the app constructs a fresh
// Cache (via NewService) whenever it swaps in a reindexed graph, so a stale entry
// can never outlive the graph it was computed against.
type Cache struct {
	inner *lru.Cache[string, any]
}

// NewCache constructs an empty result cache sized for one snapshot's
// lifetime.
func NewCache() *Cache {
	c, err := lru.New[string, any](resultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// resultCacheSize never is.
		panic(err)
	}
	return &Cache{inner: c}
}

// Get returns the cached value for key, if present.
func (c *Cache) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

// Put stores value under key, evicting the least recently used entry if
// the cache is full.
func (c *Cache) Put(key string, value any) {
	c.inner.Add(key, value)
}
