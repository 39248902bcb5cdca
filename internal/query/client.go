package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Observer receives cache events. All methods must be safe for concurrent use.
type Observer interface {
	Hit(op Op)
	Miss(op Op)
	Invalidated(op Op, n int)
}

type nopObserver struct{}

func (nopObserver) Hit(Op)              {}
func (nopObserver) Miss(Op)             {}
func (nopObserver) Invalidated(Op, int) {}

// Config controls the cache size and freshness window.
type Config struct {
	Size int
	TTL  time.Duration
}

// DefaultConfig keeps up to 512 results for 30 seconds.
func DefaultConfig() Config {
	return Config{Size: 512, TTL: 30 * time.Second}
}

// Client is safe for concurrent use.
type Client struct {
	cache    *expirable.LRU[Key, any]
	group    singleflight.Group
	deps     Dependencies
	observer Observer

	// generation is bumped on every invalidation of an op so that a fetch
	// started before the invalidation does not repopulate the cache. mu also
	// covers cache writes and invalidation scans so the two cannot interleave.
	mu         sync.Mutex
	generation map[Op]uint64
}

// NewClient creates a Client. A TTL of zero or less disables caching while
// keeping in-flight deduplication.
func NewClient(cfg Config, deps Dependencies, observer Observer) *Client {
	if cfg.Size <= 0 {
		cfg.Size = DefaultConfig().Size
	}
	if observer == nil {
		observer = nopObserver{}
	}
	c := &Client{
		deps:       deps,
		observer:   observer,
		generation: make(map[Op]uint64),
	}
	if cfg.TTL > 0 {
		c.cache = expirable.NewLRU[Key, any](cfg.Size, nil, cfg.TTL)
	}
	return c
}

func (c *Client) gen(op Op) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation[op]
}

// Fetch returns the cached value for key or runs fn once for all concurrent callers.
// Callers arriving after an invalidation of key.Op never join a flight that
// started before it. Errors are never cached.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			if typed, ok := v.(T); ok {
				c.observer.Hit(key.Op)
				return typed, nil
			}
		}
	}
	c.observer.Miss(key.Op)

	startGen := c.gen(key.Op)
	flight := fmt.Sprintf("%s#%d", key, startGen)
	v, err, _ := c.group.Do(flight, func() (interface{}, error) {
		res, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.storeIfCurrent(key, startGen, res)
		return res, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: unexpected result type %T", key, v)
	}
	return typed, nil
}

// storeIfCurrent caches res unless key.Op was invalidated since startGen.
func (c *Client) storeIfCurrent(key Key, startGen uint64, res any) bool {
	if c.cache == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation[key.Op] != startGen {
		return false
	}
	c.cache.Add(key, res)
	return true
}

// InvalidateOps drops every cached key of the given operations.
// It returns the number of dropped entries.
func (c *Client) InvalidateOps(ops ...Op) int {
	want := make(map[Op]struct{}, len(ops))
	for _, op := range ops {
		want[op] = struct{}{}
	}
	dropped := make(map[Op]int, len(ops))

	c.mu.Lock()
	for _, op := range ops {
		c.generation[op]++
	}
	if c.cache != nil {
		for _, k := range c.cache.Keys() {
			if _, ok := want[k.Op]; ok {
				if c.cache.Remove(k) {
					dropped[k.Op]++
				}
			}
		}
	}
	c.mu.Unlock()

	if c.cache == nil {
		return 0
	}

	total := 0
	for _, op := range ops {
		c.observer.Invalidated(op, dropped[op])
		total += dropped[op]
	}
	return total
}

// Invalidate drops the operations that m depends on, per the Dependencies table.
func (c *Client) Invalidate(m Mutation) int {
	return c.InvalidateOps(c.deps.Affected(m)...)
}

// Len reports the number of cached entries.
func (c *Client) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}
