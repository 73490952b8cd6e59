package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashlytics/ledger-engine/ledger"
)

// =============================================================================
// CACHE KEY TESTS
// =============================================================================

func TestKeyFor_SameWindowSameKey(t *testing.T) {
	// Any two dates inside one week resolve to one cache key.
	monday := ledger.NewDate(2025, time.March, 10)
	sunday := ledger.NewDate(2025, time.March, 16)

	assert.Equal(t,
		ledger.KeyFor(testPrincipal, monday),
		ledger.KeyFor(testPrincipal, sunday))
}

func TestKeyFor_DistinguishesPrincipalAndWeek(t *testing.T) {
	d := ledger.NewDate(2025, time.March, 12)

	assert.NotEqual(t,
		ledger.KeyFor(testPrincipal, d),
		ledger.KeyFor(ledger.PrincipalID("principal-2"), d))
	assert.NotEqual(t,
		ledger.KeyFor(testPrincipal, d),
		ledger.KeyFor(testPrincipal, d.AddDays(7)))
}

// =============================================================================
// MEMORY CACHE TESTS
// =============================================================================

func TestMemoryReportCache_RoundTrip(t *testing.T) {
	cache := ledger.NewMemoryReportCache()
	key := ledger.KeyFor(testPrincipal, ledger.NewDate(2025, time.March, 12))
	report := &ledger.WeeklyReport{}

	_, ok := cache.Get(key)
	assert.False(t, ok, "miss before put")

	cache.Put(key, report)
	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Same(t, report, got)
	assert.Equal(t, 1, cache.Len())

	cache.Invalidate(key)
	_, ok = cache.Get(key)
	assert.False(t, ok, "miss after invalidation")
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryReportCache_InvalidateMissingKey(t *testing.T) {
	// Invalidating a key that was never cached is a no-op.
	cache := ledger.NewMemoryReportCache()
	cache.Invalidate(ledger.KeyFor(testPrincipal, ledger.NewDate(2025, time.March, 12)))
	assert.Equal(t, 0, cache.Len())
}

// =============================================================================
// COORDINATOR TESTS
// =============================================================================

func TestCoordinator_InvalidatesAffectedWindowsOnly(t *testing.T) {
	// GIVEN: Cached reports for two principals and two weeks
	// WHEN: A mutation touches one principal's dates in both weeks
	// THEN: Exactly that principal's two keys are dropped

	cache := ledger.NewMemoryReportCache()
	coord := ledger.NewCoordinator(cache)
	other := ledger.PrincipalID("principal-2")

	weekOne := ledger.NewDate(2025, time.March, 12)
	weekTwo := ledger.NewDate(2025, time.March, 19)

	cache.Put(ledger.KeyFor(testPrincipal, weekOne), &ledger.WeeklyReport{})
	cache.Put(ledger.KeyFor(testPrincipal, weekTwo), &ledger.WeeklyReport{})
	cache.Put(ledger.KeyFor(other, weekOne), &ledger.WeeklyReport{})

	coord.MutationApplied(testPrincipal, weekOne, weekTwo)

	_, ok := cache.Get(ledger.KeyFor(testPrincipal, weekOne))
	assert.False(t, ok)
	_, ok = cache.Get(ledger.KeyFor(testPrincipal, weekTwo))
	assert.False(t, ok)
	_, ok = cache.Get(ledger.KeyFor(other, weekOne))
	assert.True(t, ok, "other principal's report survives")
}

func TestCoordinator_DeduplicatesDates(t *testing.T) {
	// Two dates in the same window collapse to a single invalidation.
	cache := ledger.NewMemoryReportCache()
	coord := ledger.NewCoordinator(cache)

	monday := ledger.NewDate(2025, time.March, 10)
	cache.Put(ledger.KeyFor(testPrincipal, monday), &ledger.WeeklyReport{})

	coord.MutationApplied(testPrincipal, monday, monday.AddDays(3), monday.AddDays(6))
	assert.Equal(t, 0, cache.Len())
}
