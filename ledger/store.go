/*
store.go - Persistence interface for the transaction ledger

PURPOSE:
  Defines the interface between the engine and the database. The Store is a
  durable keyed mapping from transaction id to record, scoped to an owning
  principal. Different implementations can use SQLite or in-memory storage.

CONTRACT:
  - Insert assigns the id (and insertion counter); the caller never picks ids.
  - Replace and Delete are owner-scoped: they only touch a record when both
    id and owner match, so a cross-principal write can never land.
  - Writes are all-or-nothing; an abandoned request leaves no partial state.
  - At most one in-progress write per record: a read-modify-write update
    cannot lose a concurrent delete silently - the loser observes ErrNotFound
    or ErrConflict.
  - Every operation honors its context and a bounded timeout, surfaced as
    ErrTimeout. Reads never block on other principals' writes.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - ledger/store: in-memory store for tests and development
*/
package ledger

import "context"

// Store handles persistence of transactions.
type Store interface {
	// Insert persists a new transaction, assigning its ID, CreatedAt, and Seq.
	// Returns the stored record.
	Insert(ctx context.Context, tx Transaction) (Transaction, error)

	// Get returns the transaction with the given id regardless of owner, or
	// ErrNotFound. Ownership is enforced by the caller (the mutation service),
	// which distinguishes Forbidden from NotFound.
	Get(ctx context.Context, id TransactionID) (Transaction, error)

	// Replace atomically overwrites all mutable fields of the record matching
	// tx.ID and tx.Owner. Fails with ErrNotFound when no such record exists.
	Replace(ctx context.Context, tx Transaction) (Transaction, error)

	// Delete removes the record matching id and owner. Fails with ErrNotFound
	// when no such record exists; deleting a missing id is an error, not a
	// no-op, to surface client bugs.
	Delete(ctx context.Context, owner PrincipalID, id TransactionID) error

	// ListByOwner returns the owner's transactions ordered most-recent-first
	// by date, ties broken by insertion order. A non-positive limit means no
	// paging.
	ListByOwner(ctx context.Context, owner PrincipalID, limit, offset int) ([]Transaction, error)

	// LoadWindow returns the owner's transactions dated within [from, to]
	// inclusive, in ascending date order.
	LoadWindow(ctx context.Context, owner PrincipalID, from, to Date) ([]Transaction, error)
}
