package cache

import (
	"context"
	"sync/atomic"

	"github.com/erp/invoicelock/internal/application/customerlock"
	"go.uber.org/zap"
)

// TieredStatusCache reads through a local L1 cache into a shared L2 cache.
// Writes and invalidations go to both tiers. L2 failures are logged and
// degrade to L1-only operation.
type TieredStatusCache struct {
	l1     *MemoryStatusCache
	l2     customerlock.StatusCache
	logger *zap.Logger

	l1Hits atomic.Int64
	l2Hits atomic.Int64
	misses atomic.Int64
}

// Stats counts status cache lookups per tier. A single-tier cache reports
// its hits as L1Hits.
type Stats struct {
	L1Hits    int64
	L2Hits    int64
	Misses    int64
	L1Entries int // includes expired entries not yet cleaned up
}

// NewTieredStatusCache creates a tiered cache
func NewTieredStatusCache(l1 *MemoryStatusCache, l2 customerlock.StatusCache, logger *zap.Logger) *TieredStatusCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredStatusCache{l1: l1, l2: l2, logger: logger.Named("status_cache")}
}

// Get looks up L1, then L2. An L2 hit is copied into L1.
func (c *TieredStatusCache) Get(ctx context.Context, customer string) (*customerlock.StatusResult, bool, error) {
	if result, ok, _ := c.l1.Get(ctx, customer); ok {
		c.l1Hits.Add(1)
		return result, true, nil
	}

	result, ok, err := c.l2.Get(ctx, customer)
	if err != nil {
		c.logger.Warn("L2 status cache read failed", zap.String("customer", customer), zap.Error(err))
		c.misses.Add(1)
		return nil, false, nil
	}
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}

	c.l2Hits.Add(1)
	_ = c.l1.Set(ctx, customer, result)
	return result, true, nil
}

// Set writes both tiers
func (c *TieredStatusCache) Set(ctx context.Context, customer string, result *customerlock.StatusResult) error {
	_ = c.l1.Set(ctx, customer, result)
	if err := c.l2.Set(ctx, customer, result); err != nil {
		c.logger.Warn("L2 status cache write failed", zap.String("customer", customer), zap.Error(err))
	}
	return nil
}

// Invalidate drops customers from both tiers. An L2 failure is returned
// because other replicas would keep serving the stale entry.
func (c *TieredStatusCache) Invalidate(ctx context.Context, customers ...string) error {
	_ = c.l1.Invalidate(ctx, customers...)
	return c.l2.Invalidate(ctx, customers...)
}

// Stats returns the lookup counters and the L1 size
func (c *TieredStatusCache) Stats() Stats {
	return Stats{
		L1Hits:    c.l1Hits.Load(),
		L2Hits:    c.l2Hits.Load(),
		Misses:    c.misses.Load(),
		L1Entries: c.l1.Len(),
	}
}

var _ customerlock.StatusCache = (*TieredStatusCache)(nil)
