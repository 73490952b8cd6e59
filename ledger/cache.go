/*
cache.go - Report cache and invalidation coordinator

PURPOSE:
  A previously computed WeeklyReport may be served again until the ledger
  changes underneath it. The cache is an explicit collaborator keyed by
  (principal, window start), never ambient shared state. The Coordinator
  decides which keys a mutation makes stale and drops them synchronously,
  before the mutation call returns - recompute happens on the next read,
  never in the background.

SEE ALSO:
  - service.go: Calls the Coordinator after every successful mutation
*/
package ledger

import "sync"

// =============================================================================
// REPORT CACHE
// =============================================================================

// ReportKey identifies one cached weekly report.
type ReportKey struct {
	Principal PrincipalID
	WeekStart Date
}

// KeyFor builds the cache key for the window containing d.
func KeyFor(principal PrincipalID, d Date) ReportKey {
	return ReportKey{Principal: principal, WeekStart: ResolveWeek(d).Start}
}

// ReportCache stores computed weekly reports keyed by principal and window
// start. Implementations must be safe for concurrent use.
type ReportCache interface {
	Get(key ReportKey) (*WeeklyReport, bool)
	Put(key ReportKey, report *WeeklyReport)
	Invalidate(key ReportKey)
	Len() int
}

// MemoryReportCache is the in-process ReportCache.
type MemoryReportCache struct {
	mu      sync.RWMutex
	entries map[ReportKey]*WeeklyReport
}

func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{entries: make(map[ReportKey]*WeeklyReport)}
}

func (c *MemoryReportCache) Get(key ReportKey) (*WeeklyReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *MemoryReportCache) Put(key ReportKey, report *WeeklyReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = report
}

func (c *MemoryReportCache) Invalidate(key ReportKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *MemoryReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// =============================================================================
// INVALIDATION COORDINATOR
// =============================================================================

// Coordinator marks cached aggregates stale after ledger mutations.
type Coordinator struct {
	cache ReportCache
}

func NewCoordinator(cache ReportCache) *Coordinator {
	return &Coordinator{cache: cache}
}

// MutationApplied invalidates every cached report whose window could contain
// one of the affected dates: the new date on create, old and new dates on
// update, the old date on delete. Duplicate dates collapse to one key.
func (c *Coordinator) MutationApplied(principal PrincipalID, dates ...Date) {
	seen := make(map[ReportKey]bool, len(dates))
	for _, d := range dates {
		key := KeyFor(principal, d)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.cache.Invalidate(key)
	}
}
