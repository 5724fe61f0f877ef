package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"finreport/internal/cache"
	"finreport/internal/core"
	"finreport/internal/ledger"
	"finreport/internal/log"
)

// DefaultBillCacheTTL is how long a fetched bill collection stays valid.
const DefaultBillCacheTTL = 5 * time.Minute

const activeBillsKey = "active_bills"

// BillCache memoizes the active-bill collection for a fixed TTL. The entry is
// global, not per period, and is replaced wholesale on refresh. Concurrent
// misses share one repository call.
type BillCache struct {
	repo   ledger.BillRepository
	store  *cache.LRUCache[[]core.Bill]
	group  singleflight.Group
	logger *log.Logger
}

// NewBillCache creates a cache in front of repo. A non-positive ttl falls
// back to DefaultBillCacheTTL; a nil clock uses time.Now.
func NewBillCache(repo ledger.BillRepository, ttl time.Duration, clock cache.Clock, logger *log.Logger) *BillCache {
	if ttl <= 0 {
		ttl = DefaultBillCacheTTL
	}
	if logger == nil {
		logger = log.Default(log.ComponentCache)
	}
	return &BillCache{
		repo:   repo,
		store:  cache.NewLRUCacheWithClock[[]core.Bill](1, ttl, clock),
		logger: logger.WithComponent(log.ComponentCache),
	}
}

// ActiveBills returns the cached collection, fetching it when the entry is
// missing or older than the TTL.
func (c *BillCache) ActiveBills(ctx context.Context) ([]core.Bill, error) {
	if bills, ok := c.store.Get(activeBillsKey); ok {
		c.logger.DebugContext(ctx, "Bill cache hit", log.FieldCacheHit, true, log.FieldCount, len(bills))
		return bills, nil
	}

	v, err, _ := c.group.Do(activeBillsKey, func() (any, error) {
		// Another caller may have refreshed the entry while we waited.
		if bills, ok := c.store.Get(activeBillsKey); ok {
			return bills, nil
		}
		bills, err := c.repo.ActiveBills(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch active bills: %w", err)
		}
		c.store.Set(activeBillsKey, bills)
		c.logger.InfoContext(ctx, "Bill cache refreshed", log.FieldCacheHit, false, log.FieldCount, len(bills))
		return bills, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.Bill), nil
}

// Invalidate drops the cached collection so the next call fetches again.
func (c *BillCache) Invalidate() {
	c.store.Delete(activeBillsKey)
}

// Cleaner exposes the underlying cache for periodic cleanup.
func (c *BillCache) Cleaner() cache.Cleaner {
	return c.store
}
