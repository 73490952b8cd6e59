// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cashlytics/ledger-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[ledger.TransactionID]ledger.Transaction
	seq     int64
}

func NewMemory() *Memory {
	return &Memory{records: make(map[ledger.TransactionID]ledger.Transaction)}
}

// Insert assigns id, seq, and created-at, then stores the record.
func (m *Memory) Insert(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	tx.ID = ledger.TransactionID(uuid.NewString())
	tx.Seq = m.seq
	tx.CreatedAt = time.Now().UTC()
	m.records[tx.ID] = tx
	return tx, nil
}

func (m *Memory) Get(_ context.Context, id ledger.TransactionID) (ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.records[id]
	if !ok {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	return tx, nil
}

// Replace overwrites the record matching tx.ID and tx.Owner in one step.
func (m *Memory) Replace(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[tx.ID]
	if !ok || current.Owner != tx.Owner {
		return ledger.Transaction{}, ledger.ErrNotFound
	}

	// Identity and audit fields survive the replacement.
	tx.Seq = current.Seq
	tx.CreatedAt = current.CreatedAt
	m.records[tx.ID] = tx
	return tx, nil
}

func (m *Memory) Delete(_ context.Context, owner ledger.PrincipalID, id ledger.TransactionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[id]
	if !ok || current.Owner != owner {
		return ledger.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) ListByOwner(_ context.Context, owner ledger.PrincipalID, limit, offset int) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range m.records {
		if tx.Owner == owner {
			result = append(result, tx)
		}
	}

	// Most-recent-first by date, ties in insertion order.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].Seq < result[j].Seq
	})

	if offset > 0 {
		if offset >= len(result) {
			return []ledger.Transaction{}, nil
		}
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *Memory) LoadWindow(_ context.Context, owner ledger.PrincipalID, from, to ledger.Date) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range m.records {
		if tx.Owner == owner && from.BeforeOrEqual(tx.Date) && tx.Date.BeforeOrEqual(to) {
			result = append(result, tx)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}
