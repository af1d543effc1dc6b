// Package store holds the current identity's transaction collection and its
// derived aggregate.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/domain/entity"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
)

// Snapshot is the read view consumed by the presentation layer. The slice and
// map it carries are copies; callers may not mutate store state through it.
type Snapshot struct {
	UserID       uuid.UUID
	Transactions []*entity.Transaction
	Aggregate    entity.Aggregate
	Loading      bool
	Err          error
}

// TransactionStore owns the transaction collection for the currently
// signed-in identity. All writes go through Populate, Clear and Append; the
// aggregate is recomputed from the full collection on every change, never
// patched incrementally.
//
// Concurrent fetch completions are the hazard here, not parallel mutation:
// every Populate and Clear bumps a generation counter, and a populate result
// commits only if its generation is still current. A stale fetch that
// resolves after a newer one is discarded.
type TransactionStore struct {
	repo adapter.TransactionRepository

	mu           sync.Mutex
	generation   uint64
	userID       uuid.UUID
	transactions []*entity.Transaction
	aggregate    entity.Aggregate
	loading      bool
	err          error
}

// NewTransactionStore creates an empty store backed by the given repository.
func NewTransactionStore(repo adapter.TransactionRepository) *TransactionStore {
	return &TransactionStore{
		repo:      repo,
		aggregate: entity.EmptyAggregate(),
	}
}

// Populate fetches all transactions for userID and replaces the entire
// collection. On fetch failure the prior collection and aggregate are left
// untouched, the error is recorded and loading is cleared. If a newer
// Populate or Clear supersedes this call while the fetch is in flight, the
// result is discarded and Populate returns nil.
func (s *TransactionStore) Populate(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.userID = userID
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	transactions, err := s.repo.FindByUser(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		slog.Debug("Discarding stale populate result", "user_id", userID)
		return nil
	}

	s.loading = false
	if err != nil {
		s.err = err
		return err
	}

	s.transactions = transactions
	s.aggregate = entity.ComputeAggregate(s.transactions)
	return nil
}

// Clear empties the collection and resets the aggregate, loading and error.
// Used on sign-out or identity loss. Any in-flight populate or append for the
// previous identity is invalidated.
func (s *TransactionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.userID = uuid.Nil
	s.transactions = nil
	s.aggregate = entity.EmptyAggregate()
	s.loading = false
	s.err = nil
}

// Append adds one persisted transaction to the collection and recomputes the
// aggregate from the full updated collection. An append whose owner no longer
// matches the store's identity (a sign-out or identity switch happened while
// the persist call was in flight) is dropped and ErrStaleAppend is returned.
func (s *TransactionStore) Append(transaction *entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == uuid.Nil || s.userID != transaction.UserID {
		return domainerror.ErrStaleAppend
	}

	s.transactions = append(s.transactions, transaction)
	s.aggregate = entity.ComputeAggregate(s.transactions)
	return nil
}

// Snapshot returns a consistent copy of the store's public state.
func (s *TransactionStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	transactions := make([]*entity.Transaction, len(s.transactions))
	copy(transactions, s.transactions)

	return Snapshot{
		UserID:       s.userID,
		Transactions: transactions,
		Aggregate:    copyAggregate(s.aggregate),
		Loading:      s.loading,
		Err:          s.err,
	}
}

func copyAggregate(aggregate entity.Aggregate) entity.Aggregate {
	out := aggregate
	out.CategoryBreakdown = make(map[string]decimal.Decimal, len(aggregate.CategoryBreakdown))
	for category, amount := range aggregate.CategoryBreakdown {
		out.CategoryBreakdown[category] = amount
	}
	return out
}
