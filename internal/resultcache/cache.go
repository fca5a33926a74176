// Package resultcache memoizes company reports for the process lifetime.
//
// Keys are sanitized company names. There is no TTL and no eviction — a
// deliberate simplification: reports are expensive to compute and callers
// accept staleness within one process run. Concurrent requests for the same
// uncomputed key share a single in-flight computation (single-flight), a
// tightening over naive memoization where both callers would recompute.
package resultcache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/newsvani/newsvani/pkg/models"
)

// Cache is a process-wide report cache with single-flight computation.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*models.CompanyReport
	group   singleflight.Group
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]*models.CompanyReport),
	}
}

// Get returns the cached report for key, if any.
func (c *Cache) Get(key string) (*models.CompanyReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	report, ok := c.entries[key]
	return report, ok
}

// GetOrCompute returns the cached report for key, computing and storing it
// on first use. At most one computation runs per key at a time; concurrent
// callers wait for and share that result. A failed computation is not
// cached, so a later call may retry.
func (c *Cache) GetOrCompute(key string, compute func() (*models.CompanyReport, error)) (*models.CompanyReport, error) {
	if report, ok := c.Get(key); ok {
		return report, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have stored the
		// report between our Get and Do.
		if report, ok := c.Get(key); ok {
			return report, nil
		}

		report, err := compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = report
		c.mu.Unlock()
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CompanyReport), nil
}

// Len returns the number of cached reports.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush removes all entries. Used by tests.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]*models.CompanyReport)
	c.mu.Unlock()
}
