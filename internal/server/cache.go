package server

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xtding233/gacha-odds/internal/metrics"
)

// cacheKey identifies one evaluated query. Unused fields stay zero.
type cacheKey struct {
	Op         string
	Game, Pool string
	Pity       int
	Guaranteed bool
	Draws      int
	A, B       int // target, or current/target for levels, or trials
	Flag       bool
	Seed       uint64
	Goal       string
}

// resultCache memoizes response payloads. Results are pure functions of
// the key and the profile, so entries only go stale on profile reload.
type resultCache struct {
	lru *expirable.LRU[cacheKey, any]
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	return &resultCache{lru: expirable.NewLRU[cacheKey, any](size, nil, ttl)}
}

func (c *resultCache) get(k cacheKey) (any, bool) {
	v, ok := c.lru.Get(k)
	if ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return v, ok
}

func (c *resultCache) add(k cacheKey, v any) {
	c.lru.Add(k, v)
}

func (c *resultCache) purge() {
	c.lru.Purge()
}

func (c *resultCache) len() int {
	return c.lru.Len()
}
