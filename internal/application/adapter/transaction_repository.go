// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/client/internal/domain/entity"
)

// TransactionRepository defines transaction persistence over the document store.
type TransactionRepository interface {
	// Save persists a transaction document keyed by its id.
	Save(ctx context.Context, transaction *entity.Transaction) error

	// FindByUser retrieves all transactions owned by the given identity.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Transaction, error)
}
