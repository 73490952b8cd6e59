/*
report.go - Weekly report aggregation

PURPOSE:
  Consumes a WeekWindow and a principal's transactions and produces a
  WeeklyReport: per-day credit/debit sums plus window totals. The aggregator
  is a pure read - it never mutates the ledger, and the report is derived
  state that is recomputed, never patched.

ALGORITHM:
  Partition transactions whose date falls within [Start, End] inclusive into
  7 buckets keyed by day offset from Start. Sum credit amounts and debit
  amounts per bucket with decimal arithmetic. Days with no transactions stay
  at zero - the output always has exactly 7 entries in Monday-to-Sunday order
  so consumers can chart it directly.

SEE ALSO:
  - week.go: Window resolution
  - service.go: Cache-aware report retrieval
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// REPORT TYPES
// =============================================================================

// DailyBreakdown is one day's credit and debit sums. Both are >= 0.
type DailyBreakdown struct {
	Date    Date
	Credits decimal.Decimal
	Debits  decimal.Decimal
}

// WeeklyReport is the aggregate over one week window. Derived entirely from
// the ledger; NetBalance may be negative.
type WeeklyReport struct {
	Window       WeekWindow
	Daily        [7]DailyBreakdown // Monday through Sunday, never omitted
	TotalCredits decimal.Decimal
	TotalDebits  decimal.Decimal
	NetBalance   decimal.Decimal
}

// =============================================================================
// AGGREGATION
// =============================================================================

// BuildWeeklyReport aggregates txs into a report for the given window.
// Transactions outside the window are ignored; a transaction not owned by
// principal fails the whole aggregation with a PrincipalMismatchError.
func BuildWeeklyReport(principal PrincipalID, window WeekWindow, txs []Transaction) (*WeeklyReport, error) {
	report := &WeeklyReport{
		Window:       window,
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
		NetBalance:   decimal.Zero,
	}
	for i, day := range window.Days() {
		report.Daily[i] = DailyBreakdown{
			Date:    day,
			Credits: decimal.Zero,
			Debits:  decimal.Zero,
		}
	}

	for _, tx := range txs {
		if tx.Owner != principal {
			return nil, &PrincipalMismatchError{
				Requesting: principal,
				Owner:      tx.Owner,
				TxID:       tx.ID,
			}
		}

		offset := window.DayOffset(tx.Date)
		if offset < 0 {
			continue
		}

		bucket := &report.Daily[offset]
		switch tx.Kind {
		case KindCredit:
			bucket.Credits = bucket.Credits.Add(tx.Amount)
			report.TotalCredits = report.TotalCredits.Add(tx.Amount)
		case KindDebit:
			bucket.Debits = bucket.Debits.Add(tx.Amount)
			report.TotalDebits = report.TotalDebits.Add(tx.Amount)
		}
	}

	report.NetBalance = report.TotalCredits.Sub(report.TotalDebits)
	return report, nil
}
