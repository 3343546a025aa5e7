package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/erp/invoicelock/internal/application/customerlock"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryStatusCache keeps status results in process memory
type MemoryStatusCache struct {
	items *gocache.Cache

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryStatusCache creates an in-process cache whose entries expire
// after ttl
func NewMemoryStatusCache(ttl time.Duration) *MemoryStatusCache {
	return &MemoryStatusCache{items: gocache.New(ttl, 2*ttl)}
}

// Get returns a copy of the cached result
func (c *MemoryStatusCache) Get(_ context.Context, customer string) (*customerlock.StatusResult, bool, error) {
	v, found := c.items.Get(customer)
	if !found {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	result := v.(customerlock.StatusResult)
	return &result, true, nil
}

// Set stores a copy of result
func (c *MemoryStatusCache) Set(_ context.Context, customer string, result *customerlock.StatusResult) error {
	c.items.Set(customer, *result, gocache.DefaultExpiration)
	return nil
}

// Invalidate drops the entries of customers
func (c *MemoryStatusCache) Invalidate(_ context.Context, customers ...string) error {
	for _, customer := range customers {
		c.items.Delete(customer)
	}
	return nil
}

// Len returns the number of cached entries, including expired ones not yet
// cleaned up
func (c *MemoryStatusCache) Len() int {
	return c.items.ItemCount()
}

// Stats returns the lookup counters and the number of entries
func (c *MemoryStatusCache) Stats() Stats {
	return Stats{
		L1Hits:    c.hits.Load(),
		Misses:    c.misses.Load(),
		L1Entries: c.Len(),
	}
}

var _ customerlock.StatusCache = (*MemoryStatusCache)(nil)
