/*
service.go - Ledger mutation service and report retrieval

PURPOSE:
  The Service is the single write path into the ledger and the cache-aware
  read path for weekly reports. It validates input, enforces ownership at the
  service boundary (not merely in presentation), and keeps cached aggregates
  consistent with the ledger.

OWNERSHIP ENFORCEMENT:
  Every operation takes the requesting principal. Addressing another
  principal's transaction fails with ErrForbidden and is logged as a
  security-relevant event; a missing transaction fails with ErrNotFound.
  Store writes are additionally owner-scoped, so a race between the service
  check and the write still cannot cross principals.

CONSISTENCY:
  After every successful create/update/delete the Coordinator synchronously
  invalidates the cached report for each window the mutation could affect
  (old date on update/delete, new date on create/update). Reports are
  recomputed on the next read.

ERROR CONTRACT:
  Every mutation failure leaves the ledger unchanged. Report failures never
  overwrite previously cached data with partial results.

SEE ALSO:
  - store.go: Persistence contract
  - cache.go: ReportCache and Coordinator
  - report.go: Aggregation
*/
package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service implements the read/write interface the engine exposes to its
// presentation collaborator.
type Service struct {
	store Store
	cache ReportCache
	coord *Coordinator
	log   *zap.Logger
}

// NewService wires a Service. A nil cache disables report caching; a nil
// logger disables logging.
func NewService(store Store, cache ReportCache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: store, cache: cache, log: log}
	if cache != nil {
		s.coord = NewCoordinator(cache)
	}
	return s
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create validates fields, persists a new transaction owned by principal, and
// invalidates the report window covering its date. The store assigns the id.
func (s *Service) Create(ctx context.Context, principal PrincipalID, fields Fields) (Transaction, error) {
	if err := fields.Validate(); err != nil {
		return Transaction{}, err
	}

	tx := Transaction{Owner: principal}
	fields.apply(&tx)

	stored, err := s.store.Insert(ctx, tx)
	if err != nil {
		return Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.invalidate(principal, stored.Date)
	s.log.Debug("transaction created",
		zap.String("principal", string(principal)),
		zap.String("tx_id", string(stored.ID)),
		zap.String("date", stored.Date.String()))
	return stored, nil
}

// Update replaces all mutable fields of the identified transaction in one
// atomic step; partial merges are not supported. Both the old and the new
// date's windows are invalidated.
func (s *Service) Update(ctx context.Context, principal PrincipalID, id TransactionID, fields Fields) (Transaction, error) {
	if err := fields.Validate(); err != nil {
		return Transaction{}, err
	}

	current, err := s.authorize(ctx, principal, id, "update")
	if err != nil {
		return Transaction{}, err
	}

	next := current
	fields.apply(&next)

	stored, err := s.store.Replace(ctx, next)
	if err != nil {
		return Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}

	s.invalidate(principal, current.Date, stored.Date)
	return stored, nil
}

// Delete removes the identified transaction. Deleting a missing id is an
// error, not a no-op.
func (s *Service) Delete(ctx context.Context, principal PrincipalID, id TransactionID) error {
	current, err := s.authorize(ctx, principal, id, "delete")
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, principal, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	s.invalidate(principal, current.Date)
	return nil
}

// authorize loads a transaction and enforces ownership. A transaction owned
// by another principal fails with ErrForbidden and is logged; an absent one
// fails with ErrNotFound.
func (s *Service) authorize(ctx context.Context, principal PrincipalID, id TransactionID, op string) (Transaction, error) {
	tx, err := s.store.Get(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	if tx.Owner != principal {
		s.log.Warn("cross-principal access rejected",
			zap.String("op", op),
			zap.String("principal", string(principal)),
			zap.String("owner", string(tx.Owner)),
			zap.String("tx_id", string(id)))
		return Transaction{}, ErrForbidden
	}
	return tx, nil
}

func (s *Service) invalidate(principal PrincipalID, dates ...Date) {
	if s.coord != nil {
		s.coord.MutationApplied(principal, dates...)
	}
}

// =============================================================================
// READS
// =============================================================================

// List returns the principal's transactions, most-recent-first by date with
// ties broken by insertion order. A non-positive limit disables paging.
func (s *Service) List(ctx context.Context, principal PrincipalID, limit, offset int) ([]Transaction, error) {
	return s.store.ListByOwner(ctx, principal, limit, offset)
}

// Get returns one transaction owned by the principal.
func (s *Service) Get(ctx context.Context, principal PrincipalID, id TransactionID) (Transaction, error) {
	return s.authorize(ctx, principal, id, "get")
}

// WeeklyReport resolves the window containing ref and returns its aggregate,
// from cache when the ledger has not changed underneath it, recomputed
// otherwise. Computing a report twice with no intervening mutation yields
// identical output.
func (s *Service) WeeklyReport(ctx context.Context, principal PrincipalID, ref Date) (*WeeklyReport, error) {
	window := ResolveWeek(ref)
	key := ReportKey{Principal: principal, WeekStart: window.Start}

	if s.cache != nil {
		if report, ok := s.cache.Get(key); ok {
			return report, nil
		}
	}

	txs, err := s.store.LoadWindow(ctx, principal, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("load window %s: %w", window, err)
	}

	report, err := BuildWeeklyReport(principal, window, txs)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(key, report)
	}
	return report, nil
}
