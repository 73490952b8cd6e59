package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cashlytics/ledger-engine/ledger"
	"github.com/cashlytics/ledger-engine/ledger/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestService(t *testing.T) (*ledger.Service, *ledger.MemoryReportCache) {
	t.Helper()
	cache := ledger.NewMemoryReportCache()
	return ledger.NewService(store.NewMemory(), cache, nil), cache
}

func validFields(amount string, kind ledger.Kind, d ledger.Date) ledger.Fields {
	return ledger.Fields{
		Amount:      decimal.RequireFromString(amount),
		Kind:        kind,
		Category:    "groceries",
		Description: "weekly shop",
		Date:        d,
	}
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestService_CreateAndList(t *testing.T) {
	// GIVEN: A fresh ledger
	// WHEN: Creating a transaction and listing
	// THEN: The listed record carries every submitted field plus a store id

	svc, _ := newTestService(t)
	ctx := context.Background()
	date := ledger.NewDate(2025, time.March, 12)

	created, err := svc.Create(ctx, testPrincipal, validFields("99.95", ledger.KindDebit, date))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, testPrincipal, created.Owner)
	assert.False(t, created.CreatedAt.IsZero())

	listed, err := svc.List(ctx, testPrincipal, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assertMoney(t, "99.95", listed[0].Amount)
	assert.Equal(t, ledger.KindDebit, listed[0].Kind)
	assert.Equal(t, "groceries", listed[0].Category)
	assert.Equal(t, "weekly shop", listed[0].Description)
	assert.True(t, date.Equal(listed[0].Date))
}

func TestService_CreateValidation(t *testing.T) {
	// Every violation is named in one round trip, and nothing is persisted.
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, testPrincipal, ledger.Fields{
		Amount: decimal.NewFromInt(-5),
		Kind:   ledger.Kind("transfer"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrValidation)

	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make(map[string]bool)
	for _, violation := range verr.Fields {
		fields[violation.Field] = true
	}
	assert.True(t, fields["amount"])
	assert.True(t, fields["kind"])
	assert.True(t, fields["category"])
	assert.True(t, fields["date"])

	listed, err := svc.List(ctx, testPrincipal, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestService_ListOrdering(t *testing.T) {
	// GIVEN: Transactions on mixed dates, two sharing one date
	// WHEN: Listing
	// THEN: Most recent date first; same-date records keep insertion order

	svc, _ := newTestService(t)
	ctx := context.Background()
	d1 := ledger.NewDate(2025, time.March, 10)
	d2 := ledger.NewDate(2025, time.March, 14)

	first, err := svc.Create(ctx, testPrincipal, validFields("1.00", ledger.KindCredit, d1))
	require.NoError(t, err)
	second, err := svc.Create(ctx, testPrincipal, validFields("2.00", ledger.KindCredit, d2))
	require.NoError(t, err)
	third, err := svc.Create(ctx, testPrincipal, validFields("3.00", ledger.KindCredit, d1))
	require.NoError(t, err)

	listed, err := svc.List(ctx, testPrincipal, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, second.ID, listed[0].ID, "latest date first")
	assert.Equal(t, first.ID, listed[1].ID, "same date, earlier insert first")
	assert.Equal(t, third.ID, listed[2].ID)
}

// =============================================================================
// UPDATE TESTS
// =============================================================================

func TestService_UpdateReplacesAllFields(t *testing.T) {
	// GIVEN: An existing transaction with a description
	// WHEN: Updating with fields that omit the description
	// THEN: The stored record has an empty description - replacement, not merge

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, testPrincipal,
		validFields("20.00", ledger.KindDebit, ledger.NewDate(2025, time.March, 12)))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, testPrincipal, created.ID, ledger.Fields{
		Amount:   decimal.RequireFromString("45.00"),
		Kind:     ledger.KindCredit,
		Category: "refund",
		Date:     ledger.NewDate(2025, time.March, 20),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assertMoney(t, "45.00", updated.Amount)
	assert.Equal(t, ledger.KindCredit, updated.Kind)
	assert.Equal(t, "refund", updated.Category)
	assert.Empty(t, updated.Description, "omitted field replaced, not merged")
	assert.Equal(t, "2025-03-20", updated.Date.String())
}

func TestService_UpdateMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), testPrincipal, "no-such-id",
		validFields("1.00", ledger.KindCredit, ledger.NewDate(2025, time.March, 12)))
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_UpdateForeignTransaction(t *testing.T) {
	// GIVEN: A transaction owned by principal A
	// WHEN: Principal B addresses it by id
	// THEN: The operation fails with ErrForbidden and the record is untouched

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, testPrincipal,
		validFields("20.00", ledger.KindDebit, ledger.NewDate(2025, time.March, 12)))
	require.NoError(t, err)

	_, err = svc.Update(ctx, ledger.PrincipalID("intruder"), created.ID,
		validFields("0.01", ledger.KindCredit, ledger.NewDate(2025, time.March, 12)))
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	got, err := svc.Get(ctx, testPrincipal, created.ID)
	require.NoError(t, err)
	assertMoney(t, "20.00", got.Amount)
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, testPrincipal,
		validFields("20.00", ledger.KindDebit, ledger.NewDate(2025, time.March, 12)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, testPrincipal, created.ID))

	_, err = svc.Get(ctx, testPrincipal, created.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_DeleteMissing(t *testing.T) {
	// Deleting an absent id is an error, not a no-op.
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), testPrincipal, "no-such-id")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_DeleteForeignTransaction(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, testPrincipal,
		validFields("20.00", ledger.KindDebit, ledger.NewDate(2025, time.March, 12)))
	require.NoError(t, err)

	err = svc.Delete(ctx, ledger.PrincipalID("intruder"), created.ID)
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	_, err = svc.Get(ctx, testPrincipal, created.ID)
	assert.NoError(t, err, "record survives the rejected delete")
}

// =============================================================================
// ISOLATION TESTS
// =============================================================================

func TestService_PrincipalIsolation(t *testing.T) {
	// Listing and reporting never leak another principal's records.
	svc, _ := newTestService(t)
	ctx := context.Background()
	date := ledger.NewDate(2025, time.March, 12)
	other := ledger.PrincipalID("principal-2")

	_, err := svc.Create(ctx, testPrincipal, validFields("10.00", ledger.KindCredit, date))
	require.NoError(t, err)
	_, err = svc.Create(ctx, other, validFields("999.00", ledger.KindCredit, date))
	require.NoError(t, err)

	mine, err := svc.List(ctx, testPrincipal, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assertMoney(t, "10.00", mine[0].Amount)

	report, err := svc.WeeklyReport(ctx, testPrincipal, date)
	require.NoError(t, err)
	assertMoney(t, "10.00", report.TotalCredits)
}

// =============================================================================
// REPORT CACHING TESTS
// =============================================================================

func TestService_ReportCachedUntilMutation(t *testing.T) {
	// GIVEN: A computed report
	// WHEN: Reading again with no intervening mutation
	// THEN: The cached aggregate is served without recomputation

	svc, cache := newTestService(t)
	ctx := context.Background()
	date := ledger.NewDate(2025, time.March, 12)

	_, err := svc.Create(ctx, testPrincipal, validFields("10.00", ledger.KindCredit, date))
	require.NoError(t, err)

	first, err := svc.WeeklyReport(ctx, testPrincipal, date)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := svc.WeeklyReport(ctx, testPrincipal, date)
	require.NoError(t, err)
	assert.Same(t, first, second, "second read served from cache")
}

func TestService_MutationInvalidatesReport(t *testing.T) {
	// GIVEN: A cached weekly report
	// WHEN: Deleting a transaction inside that window
	// THEN: The next report reflects the deletion

	svc, _ := newTestService(t)
	ctx := context.Background()
	monday := ledger.NewDate(2025, time.March, 10)

	_, err := svc.Create(ctx, testPrincipal, validFields("1000.00", ledger.KindCredit, monday))
	require.NoError(t, err)
	doomed, err := svc.Create(ctx, testPrincipal, validFields("250.50", ledger.KindDebit, monday.AddDays(2)))
	require.NoError(t, err)

	before, err := svc.WeeklyReport(ctx, testPrincipal, monday)
	require.NoError(t, err)
	assertMoney(t, "749.50", before.NetBalance)

	require.NoError(t, svc.Delete(ctx, testPrincipal, doomed.ID))

	after, err := svc.WeeklyReport(ctx, testPrincipal, monday)
	require.NoError(t, err)
	assertMoney(t, "1000.00", after.NetBalance)
	assert.True(t, after.TotalDebits.IsZero())
}

func TestService_UpdateAcrossWindows(t *testing.T) {
	// GIVEN: Cached reports for two adjacent weeks
	// WHEN: Moving a transaction from one week into the other
	// THEN: Both windows' next reads reflect the move

	svc, _ := newTestService(t)
	ctx := context.Background()
	weekOneDay := ledger.NewDate(2025, time.March, 12)
	weekTwoDay := ledger.NewDate(2025, time.March, 19)

	created, err := svc.Create(ctx, testPrincipal, validFields("75.00", ledger.KindDebit, weekOneDay))
	require.NoError(t, err)

	one, err := svc.WeeklyReport(ctx, testPrincipal, weekOneDay)
	require.NoError(t, err)
	assertMoney(t, "75.00", one.TotalDebits)
	two, err := svc.WeeklyReport(ctx, testPrincipal, weekTwoDay)
	require.NoError(t, err)
	assert.True(t, two.TotalDebits.IsZero())

	_, err = svc.Update(ctx, testPrincipal, created.ID, validFields("75.00", ledger.KindDebit, weekTwoDay))
	require.NoError(t, err)

	one, err = svc.WeeklyReport(ctx, testPrincipal, weekOneDay)
	require.NoError(t, err)
	assert.True(t, one.TotalDebits.IsZero(), "old window recomputed")
	two, err = svc.WeeklyReport(ctx, testPrincipal, weekTwoDay)
	require.NoError(t, err)
	assertMoney(t, "75.00", two.TotalDebits)
}

func TestService_NilCache(t *testing.T) {
	// A nil cache disables caching but keeps reads correct.
	svc := ledger.NewService(store.NewMemory(), nil, nil)
	ctx := context.Background()
	date := ledger.NewDate(2025, time.March, 12)

	_, err := svc.Create(ctx, testPrincipal, validFields("10.00", ledger.KindCredit, date))
	require.NoError(t, err)

	report, err := svc.WeeklyReport(ctx, testPrincipal, date)
	require.NoError(t, err)
	assertMoney(t, "10.00", report.TotalCredits)
}
