/*
Package ledger provides the weekly transaction ledger engine.

PURPOSE:
  This package contains the domain types and algorithms for recording dated,
  categorized monetary transactions (credits/debits) and aggregating them into
  a rolling Monday-to-Sunday weekly report. The engine owns the invariants:
  date-window correctness across month/year boundaries, aggregate-vs-ledger
  consistency, and idempotent recomputation.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: A single ledger record owned by exactly one principal
  - Kind: credit or debit
  - Fields: The mutable portion of a transaction, validated on every write
  - Principal/Transaction IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so monetary sums never drift
  2. Ownership: Every transaction belongs to exactly one principal
  3. Full replacement: Updates replace all mutable fields atomically
  4. Derived reports: WeeklyReport is recomputed, never patched

SEE ALSO:
  - week.go: Week window resolution
  - report.go: Weekly aggregation
  - service.go: Mutation service with validation and ownership enforcement
  - store.go: Persistence interface
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// PrincipalID is the opaque identity owning a set of transactions.
// The engine never interprets its contents.
type PrincipalID string

// TransactionID uniquely identifies a transaction within the store.
// Assigned by the store on insert, immutable afterwards.
type TransactionID string

// =============================================================================
// KIND - Direction of a monetary transaction
// =============================================================================

type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindCredit || k == KindDebit
}

// =============================================================================
// TRANSACTION - A single ledger record
// =============================================================================

// Transaction is a dated, categorized monetary record.
//
// INVARIANTS:
//   - Amount > 0 (direction is carried by Kind, never by sign)
//   - Kind is credit or debit
//   - Category is non-empty
//   - Date is a naive calendar date (no time component, no timezone)
//   - Exactly one owner; never mutated by the report aggregator
type Transaction struct {
	ID          TransactionID
	Owner       PrincipalID
	Amount      decimal.Decimal
	Kind        Kind
	Category    string
	Description string
	Date        Date

	// Audit fields, assigned by the store.
	CreatedAt time.Time
	Seq       int64 // insertion counter, breaks ordering ties within a day
}

// Fields is the mutable portion of a transaction as submitted by a caller.
// Create and Update both take the full set; updates replace, never merge.
type Fields struct {
	Amount      decimal.Decimal
	Kind        Kind
	Category    string
	Description string
	Date        Date
}

// Validation limits, matching the persisted schema.
const (
	MaxCategoryLen    = 100
	MaxDescriptionLen = 500
)

// Validate checks every field and returns a ValidationError naming all
// violations, or nil when the fields are acceptable.
func (f Fields) Validate() error {
	var v ValidationError

	if !f.Amount.IsPositive() {
		v.add("amount", "must be greater than zero")
	}
	if !f.Kind.Valid() {
		v.add("kind", "must be credit or debit")
	}
	if f.Category == "" {
		v.add("category", "must not be empty")
	}
	if len(f.Category) > MaxCategoryLen {
		v.add("category", "too long")
	}
	if len(f.Description) > MaxDescriptionLen {
		v.add("description", "too long")
	}
	if f.Date.IsZero() {
		v.add("date", "must be a valid calendar date")
	}

	if len(v.Fields) > 0 {
		return &v
	}
	return nil
}

// apply copies the fields onto a transaction, replacing all mutable state.
func (f Fields) apply(tx *Transaction) {
	tx.Amount = f.Amount
	tx.Kind = f.Kind
	tx.Category = f.Category
	tx.Description = f.Description
	tx.Date = f.Date
}
