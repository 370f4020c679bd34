package geocode

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Remote is a shared second cache tier, e.g. Redis.
type Remote interface {
	Get(ctx context.Context, key string) (Place, bool, error)
	Set(ctx context.Context, key string, p Place, ttl time.Duration) error
}

type entry struct {
	place   Place
	expires time.Time // zero means never
	elem    *list.Element
}

// Cache memoizes lookups keyed by the lower-cased, trimmed input.
// A Place with an empty Formatted value records a known miss.
type Cache struct {
	resolver Resolver
	remote   Remote
	ttl      time.Duration
	maxSize  int
	now      func() time.Time
	logger   logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
	order   *list.List // insertion order, oldest at front

	group singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL bounds entry lifetime. Zero keeps entries for the process lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxSize bounds the number of entries, evicting the oldest. Zero is unbounded.
func WithMaxSize(n int) CacheOption {
	return func(c *Cache) {
		if n >= 0 {
			c.maxSize = n
		}
	}
}

// WithRemote adds a shared second tier consulted on local misses.
func WithRemote(r Remote) CacheOption {
	return func(c *Cache) { c.remote = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(l logger.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache wraps resolver with a memoizing cache.
func NewCache(resolver Resolver, opts ...CacheOption) *Cache {
	c := &Cache{
		resolver: resolver,
		now:      time.Now,
		logger:   logger.Get().Named("geocode"),
		entries:  make(map[string]*entry),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key normalizes a raw location into its cache key.
func Key(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Lookup resolves raw through the cache. Concurrent misses for one key share a single call.
func (c *Cache) Lookup(ctx context.Context, raw string) (Place, error) {
	key := Key(raw)
	if key == "" {
		return Place{}, ErrEmptyQuery
	}

	if p, ok := c.local(key); ok {
		metrics.RecordGeocodeLookup("hit")
		return found(p)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		return c.fill(context.WithoutCancel(ctx), key, raw)
	})
	select {
	case <-ctx.Done():
		return Place{}, fmt.Errorf("geocode %q: %w", key, ctx.Err())
	case res := <-ch:
		if res.Shared {
			metrics.RecordGeocodeLookup("shared")
		}
		if res.Err != nil {
			metrics.RecordGeocodeLookup("error")
			return Place{}, res.Err
		}
		return found(res.Val.(Place))
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func found(p Place) (Place, error) {
	if p.Formatted == "" {
		return Place{}, ErrNoMatch
	}
	return p, nil
}

func (c *Cache) fill(ctx context.Context, key, raw string) (Place, error) {
	if c.remote != nil {
		p, ok, err := c.remote.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn(ctx, "remote geocode cache read failed", logger.String("key", key), logger.Error(err))
		case ok:
			metrics.RecordGeocodeLookup("remote_hit")
			c.store(key, p)
			return p, nil
		}
	}

	metrics.RecordGeocodeLookup("miss")
	p, err := c.resolver.Resolve(ctx, raw)
	if err != nil && !errors.Is(err, ErrNoMatch) {
		return Place{}, err
	}
	if err != nil {
		p = Place{}
	}
	c.store(key, p)
	if c.remote != nil {
		if err := c.remote.Set(ctx, key, p, c.ttl); err != nil {
			c.logger.Warn(ctx, "remote geocode cache write failed", logger.String("key", key), logger.Error(err))
		}
	}
	return p, nil
}

func (c *Cache) local(key string) (Place, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Place{}, false
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.order.Remove(e.elem)
		delete(c.entries, key)
		metrics.UpdateGeocodeCacheSize(len(c.entries))
		return Place{}, false
	}
	return e.place, true
}

func (c *Cache) store(key string, p Place) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	if e, ok := c.entries[key]; ok {
		e.place, e.expires = p, expires
		return
	}
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		if oldest := c.order.Front(); oldest != nil {
			delete(c.entries, oldest.Value.(string))
			c.order.Remove(oldest)
		}
	}
	c.entries[key] = &entry{place: p, expires: expires, elem: c.order.PushBack(key)}
	metrics.UpdateGeocodeCacheSize(len(c.entries))
}
