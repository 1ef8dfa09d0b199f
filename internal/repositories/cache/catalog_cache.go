// Package cache wraps read-mostly repositories with an in-process cache.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a catalog entry is served before being refetched.
const DefaultTTL = 30 * time.Second

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

type ttlCache[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	now   func() time.Time
}

func newTTLCache[T any](now func() time.Time) *ttlCache[T] {
	return &ttlCache[T]{items: make(map[string]entry[T]), now: now}
}

func (c *ttlCache[T]) get(key string) (T, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	return item.value, true
}

func (c *ttlCache[T]) set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[T]{value: value, expiresAt: c.now().Add(ttl)}
}

func (c *ttlCache[T]) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// CatalogCache is a cache-aside CatalogReader. Concurrent misses for the
// same key are collapsed into one lookup on the underlying reader.
// Lookup errors, including not found, are never cached.
type CatalogCache struct {
	next     portsrepo.CatalogReader
	ttl      time.Duration
	products *ttlCache[domain.Product]
	variants *ttlCache[domain.Variant]
	group    singleflight.Group
}

var _ portsrepo.CatalogReader = (*CatalogCache)(nil)

// CatalogCacheOption configures a CatalogCache.
type CatalogCacheOption func(*catalogCacheOptions)

type catalogCacheOptions struct {
	now func() time.Time
}

// WithNow overrides the cache clock.
func WithNow(now func() time.Time) CatalogCacheOption {
	return func(o *catalogCacheOptions) {
		o.now = now
	}
}

// NewCatalogCache wraps next. A non-positive ttl falls back to DefaultTTL.
func NewCatalogCache(next portsrepo.CatalogReader, ttl time.Duration, options ...CatalogCacheOption) *CatalogCache {
	opts := catalogCacheOptions{now: time.Now}
	for _, o := range options {
		o(&opts)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CatalogCache{
		next:     next,
		ttl:      ttl,
		products: newTTLCache[domain.Product](opts.now),
		variants: newTTLCache[domain.Variant](opts.now),
	}
}

func (c *CatalogCache) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	return load(ctx, c, c.products, "product:"+productID, func(ctx context.Context) (*domain.Product, error) {
		return c.next.FindProductByID(ctx, productID)
	})
}

func (c *CatalogCache) FindVariantByID(ctx context.Context, variantID string) (*domain.Variant, error) {
	return load(ctx, c, c.variants, "variant:"+variantID, func(ctx context.Context) (*domain.Variant, error) {
		return c.next.FindVariantByID(ctx, variantID)
	})
}

// InvalidateProduct drops a cached product so the next read goes to the store.
func (c *CatalogCache) InvalidateProduct(productID string) {
	c.products.delete("product:" + productID)
}

// InvalidateVariant drops a cached variant.
func (c *CatalogCache) InvalidateVariant(variantID string) {
	c.variants.delete("variant:" + variantID)
}

// load returns a copy so callers can never mutate the cached value.
func load[T any](ctx context.Context, c *CatalogCache, cache *ttlCache[T], key string, fetch func(context.Context) (*T, error)) (*T, error) {
	if value, ok := cache.get(key); ok {
		return &value, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if value, ok := cache.get(key); ok {
			return value, nil
		}
		fresh, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		cache.set(key, *fresh, c.ttl)
		return *fresh, nil
	})
	if err != nil {
		return nil, err
	}
	value := v.(T)
	return &value, nil
}
