// Package cache memoizes alignment results.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/algobio/dnacore/internal/domain/alignment"
	"github.com/algobio/dnacore/internal/domain/sequence"
	"github.com/algobio/dnacore/pkg/metrics"
)

const defaultMaxSize = 1024

// Cache stores alignment results by (algorithm, s1, s2).
type Cache interface {
	// Get returns the cached result for the key, if any.
	Get(alg alignment.Algorithm, s1, s2 sequence.Sequence) (alignment.Result, bool)

	// Put records a result, evicting the oldest entry when full.
	Put(alg alignment.Algorithm, s1, s2 sequence.Sequence, res alignment.Result)

	Size() int64
}

// key is the full cache key; the hash only selects the slot.
type key struct {
	alg    alignment.Algorithm
	s1, s2 sequence.Sequence
}

// node is one entry in insertion order.
type node struct {
	hash uint64
	key  key
	res  alignment.Result
	next *node
}

func (n *node) reset() {
	*n = node{}
}

// inMemoryCache implements Cache with a map and a FIFO list. A maxSize <= 0
// disables caching entirely.
type inMemoryCache struct {
	mu       sync.Mutex
	entries  map[uint64]*node
	head     *node // oldest
	tail     *node // newest
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryCache creates a new cache with configuration options.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[uint64]*node)
	c.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	metrics.UpdateCacheSize(0)

	return c
}

func hashKey(k key) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(k.alg.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(string(k.s1))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(string(k.s2))
	return d.Sum64()
}

// Get implements Cache.
func (c *inMemoryCache) Get(alg alignment.Algorithm, s1, s2 sequence.Sequence) (alignment.Result, bool) {
	if c.maxSize <= 0 {
		return alignment.Result{}, false
	}
	k := key{alg: alg, s1: s1, s2: s2}
	h := hashKey(k)

	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[h]
	if !ok || n.key != k {
		metrics.RecordCacheMiss()
		return alignment.Result{}, false
	}
	metrics.RecordCacheHit()
	return cloneResult(n.res), true
}

// Put implements Cache.
func (c *inMemoryCache) Put(alg alignment.Algorithm, s1, s2 sequence.Sequence, res alignment.Result) {
	if c.maxSize <= 0 {
		return
	}
	k := key{alg: alg, s1: s1, s2: s2}
	h := hashKey(k)

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[h]; ok {
		// same slot: either a repeat or a hash collision; keep the newest
		n.key = k
		n.res = cloneResult(res)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.hash = h
	n.key = k
	n.res = cloneResult(res)
	if c.tail == nil {
		c.head = n
	} else {
		c.tail.next = n
	}
	c.tail = n
	c.entries[h] = n

	metrics.UpdateCacheSize(int(c.size.Add(1)))
}

// Size returns the number of cached results.
func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}

// evictOldest drops the head of the list. Caller holds mu.
func (c *inMemoryCache) evictOldest() {
	n := c.head
	if n == nil {
		return
	}
	c.head = n.next
	if c.head == nil {
		c.tail = nil
	}
	delete(c.entries, n.hash)
	n.reset()
	c.nodePool.Put(n)

	metrics.RecordCacheEviction()
	metrics.UpdateCacheSize(int(c.size.Add(-1)))
}

// cloneResult copies the Window so callers cannot mutate cached state.
func cloneResult(r alignment.Result) alignment.Result {
	if r.Window != nil {
		w := *r.Window
		r.Window = &w
	}
	return r
}

// Inner is the aligner being memoized.
type Inner interface {
	Align(ctx context.Context, s1, s2 sequence.Sequence, alg alignment.Algorithm) (alignment.Result, error)
}

// Aligner serves repeated alignments from a Cache. Only successful results
// are cached.
type Aligner struct {
	inner Inner
	cache Cache
}

// NewAligner wraps inner with cache.
func NewAligner(inner Inner, cache Cache) *Aligner {
	return &Aligner{inner: inner, cache: cache}
}

// Align implements the aligner contract.
func (a *Aligner) Align(ctx context.Context, s1, s2 sequence.Sequence, alg alignment.Algorithm) (alignment.Result, error) {
	if res, ok := a.cache.Get(alg, s1, s2); ok {
		return res, nil
	}
	res, err := a.inner.Align(ctx, s1, s2, alg)
	if err != nil {
		return alignment.Result{}, err
	}
	a.cache.Put(alg, s1, s2, res)
	return res, nil
}

// Size returns the number of cached results.
func (a *Aligner) Size() int64 { return a.cache.Size() }
