/*
Package sqlite provides the SQLite-backed implementation of ledger.Store.

PURPOSE:
  Durable persistence for the transaction ledger. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

OWNERSHIP SCOPING:
  Replace and Delete match on (id, owner) so a cross-principal write can
  never land, even if the service-level check raced a concurrent mutation.
  List and window queries filter by owner; one principal's reads are never
  blocked by another principal's writes.

CONCURRENCY:
  A sync.RWMutex serializes writes: at most one in-progress write per record.
  A read-modify-write update racing a delete loses cleanly - zero rows
  affected surfaces as ErrNotFound. SQLITE_BUSY surfaces as ErrConflict.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

TIMEOUTS:
  Every operation runs under a bounded deadline. context.DeadlineExceeded is
  surfaced as ledger.ErrTimeout; retries are the caller's responsibility.

ORDERING:
  rowid doubles as the insertion counter (Seq). Listing orders by
  tx_date DESC, rowid ASC: most-recent-first by date, insertion order within
  a day.

MIGRATION:
  Schema is auto-migrated on New(). For a multi-node deployment, use a
  versioned migration tool instead.

SEE ALSO:
  - ledger/store.go: Interface definition and contract
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/cashlytics/ledger-engine/ledger"
)

// DefaultOpTimeout bounds every store operation unless overridden.
const DefaultOpTimeout = 5 * time.Second

// Store implements ledger.Store using SQLite.
type Store struct {
	db        *sql.DB
	mu        sync.RWMutex
	opTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithOpTimeout overrides the per-operation deadline.
func WithOpTimeout(d time.Duration) Option {
	return func(s *Store) { s.opTimeout = d }
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, opTimeout: DefaultOpTimeout}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		amount TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('credit', 'debit')),
		category TEXT NOT NULL,
		description TEXT,
		tx_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: weekly window queries and owner-scoped listing
	CREATE INDEX IF NOT EXISTS idx_transactions_owner_date
		ON transactions(owner, tx_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// opCtx applies the bounded per-operation deadline.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

// Insert persists a new transaction, assigning its id and audit fields.
func (s *Store) Insert(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	tx.ID = ledger.TransactionID(uuid.NewString())
	tx.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO transactions (id, owner, amount, kind, category, description, tx_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.Owner,
		tx.Amount.String(),
		tx.Kind,
		tx.Category,
		nullString(tx.Description),
		tx.Date.String(),
		tx.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ledger.Transaction{}, mapError("insert transaction", err)
	}

	// rowid is the insertion counter.
	tx.Seq, err = res.LastInsertId()
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

// Get returns a transaction by id regardless of owner.
func (s *Store) Get(ctx context.Context, id ledger.TransactionID) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.getLocked(ctx, id)
}

// Replace overwrites all mutable fields of the record matching id and owner.
func (s *Store) Replace(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		UPDATE transactions
		SET amount = ?, kind = ?, category = ?, description = ?, tx_date = ?
		WHERE id = ? AND owner = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Amount.String(),
		tx.Kind,
		tx.Category,
		nullString(tx.Description),
		tx.Date.String(),
		tx.ID,
		tx.Owner,
	)
	if err != nil {
		return ledger.Transaction{}, mapError("replace transaction", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("replace transaction: %w", err)
	}
	if affected == 0 {
		// Record vanished under a concurrent mutation, or owner mismatch.
		return ledger.Transaction{}, ledger.ErrNotFound
	}

	return s.getLocked(ctx, tx.ID)
}

// Delete removes the record matching id and owner.
func (s *Store) Delete(ctx context.Context, owner ledger.PrincipalID, id ledger.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND owner = ?", id, owner)
	if err != nil {
		return mapError("delete transaction", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// ListByOwner returns the owner's transactions, date descending with rowid
// breaking ties. A non-positive limit disables paging.
func (s *Store) ListByOwner(ctx context.Context, owner ledger.PrincipalID, limit, offset int) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		SELECT rowid, id, owner, amount, kind, category, description, tx_date, created_at
		FROM transactions
		WHERE owner = ?
		ORDER BY tx_date DESC, rowid ASC
	`
	args := []any{owner}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	return s.queryTransactions(ctx, query, args...)
}

// LoadWindow returns the owner's transactions dated within [from, to].
func (s *Store) LoadWindow(ctx context.Context, owner ledger.PrincipalID, from, to ledger.Date) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query := `
		SELECT rowid, id, owner, amount, kind, category, description, tx_date, created_at
		FROM transactions
		WHERE owner = ? AND tx_date >= ? AND tx_date <= ?
		ORDER BY tx_date ASC, rowid ASC
	`

	return s.queryTransactions(ctx, query, owner, from.String(), to.String())
}

func (s *Store) getLocked(ctx context.Context, id ledger.TransactionID) (ledger.Transaction, error) {
	query := `
		SELECT rowid, id, owner, amount, kind, category, description, tx_date, created_at
		FROM transactions
		WHERE id = ?
	`
	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Transaction{}, mapError("get transaction", err)
	}
	return tx, nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("query transactions", err)
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("query transactions", err)
	}
	return transactions, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (ledger.Transaction, error) {
	var (
		tx          ledger.Transaction
		amount      string
		description sql.NullString
		txDate      string
		createdAt   string
	)

	err := row.Scan(&tx.Seq, &tx.ID, &tx.Owner, &amount, &tx.Kind,
		&tx.Category, &description, &txDate, &createdAt)
	if err != nil {
		return tx, err
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction %s: %w", tx.ID, err)
	}
	tx.Date, err = ledger.ParseDate(txDate)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction %s: %w", tx.ID, err)
	}
	tx.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction %s: %w", tx.ID, err)
	}
	tx.Description = description.String

	return tx, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM transactions")
	return err
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

// mapError classifies driver errors into the engine's taxonomy.
func mapError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, ledger.ErrTimeout)
	case isBusyError(err):
		return fmt.Errorf("%s: %w", op, ledger.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
