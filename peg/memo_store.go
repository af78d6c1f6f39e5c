package peg

import lru "github.com/hashicorp/golang-lru/v2"

// memoStore abstracts the per-parse memoization table, letting large
// documents opt into a bounded cache instead of the default unbounded map.
type memoStore interface {
	get(key cacheKey) (Result, bool)
	set(key cacheKey, r Result)
}

type mapStore struct {
	m map[cacheKey]Result
}

func newMapStore() *mapStore { return &mapStore{m: map[cacheKey]Result{}} }

func (s *mapStore) get(key cacheKey) (Result, bool) { r, ok := s.m[key]; return r, ok }
func (s *mapStore) set(key cacheKey, r Result)      { s.m[key] = r }

// lruStore bounds memo memory at the cost of potentially re-evaluating an
// evicted (rule, position) pair; this only trades time for space, since the
// engine is correct regardless of whether a memo hit occurs (spec.md's
// linear-time guarantee specifically depends on an unbounded cache, so this
// is an explicit, opt-in tradeoff for very large documents).
type lruStore struct {
	c *lru.Cache[cacheKey, Result]
}

func newLRUStore(size int) *lruStore {
	c, err := lru.New[cacheKey, Result](size)
	if err != nil {
		// Only returns an error for size <= 0; newMemoStore only calls this
		// for a positive size, so this path is unreachable in practice.
		c, _ = lru.New[cacheKey, Result](1)
	}
	return &lruStore{c: c}
}

func (s *lruStore) get(key cacheKey) (Result, bool) { return s.c.Get(key) }
func (s *lruStore) set(key cacheKey, r Result)      { s.c.Add(key, r) }

// CacheOption configures the memoization backend a Driver's parses use.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	boundedSize int
}

// WithBoundedCache selects an LRU-bounded memo table of the given size
// instead of the default unbounded map, for callers parsing very large
// documents who want to cap memo memory at the cost of potential
// re-evaluation of evicted entries.
func WithBoundedCache(size int) CacheOption {
	return func(c *cacheConfig) { c.boundedSize = size }
}

func newMemoStore(cfg cacheConfig) memoStore {
	if cfg.boundedSize > 0 {
		return newLRUStore(cfg.boundedSize)
	}
	return newMapStore()
}
