package plan

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"frontmatter-transform/internal/schema"
)

// DefaultCacheSize bounds a CachingResolver created with size <= 0.
const DefaultCacheSize = 128

// CachingResolver memoizes processing orders by schema identity. Schemas are
// read-only once parsed, so the pointer identifies the content.
//
// Cached orders are shared between callers and must not be modified.
type CachingResolver struct {
	*Resolver

	cache *lru.Cache[*schema.Node, *ProcessingOrder]
}

// NewCachingResolver wraps r with an LRU cache holding up to size orders.
func NewCachingResolver(r *Resolver, size int) (*CachingResolver, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[*schema.Node, *ProcessingOrder](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create order cache: %w", err)
	}

	return &CachingResolver{Resolver: r, cache: cache}, nil
}

// Resolve returns the cached order for root, resolving it on a miss.
// Failures are not cached.
func (c *CachingResolver) Resolve(root *schema.Node) (*ProcessingOrder, error) {
	if order, ok := c.cache.Get(root); ok {
		return order, nil
	}

	order, err := c.Resolver.Resolve(root)
	if err != nil {
		return nil, err
	}

	c.cache.Add(root, order)

	return order, nil
}

// Len returns the number of cached orders.
func (c *CachingResolver) Len() int {
	return c.cache.Len()
}

// Purge drops every cached order.
func (c *CachingResolver) Purge() {
	c.cache.Purge()
}
