// Package persistence implements repository interfaces over the document store.
package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/domain/entity"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
)

// transactionsCollection holds transaction documents keyed by transaction id.
const transactionsCollection = "transactions"

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	docs adapter.DocumentStore
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(docs adapter.DocumentStore) adapter.TransactionRepository {
	return &transactionRepository{
		docs: docs,
	}
}

// Save persists a transaction document keyed by its id.
func (r *transactionRepository) Save(ctx context.Context, transaction *entity.Transaction) error {
	doc := adapter.Document{
		"id":              transaction.ID.String(),
		"userId":          transaction.UserID.String(),
		"transactionType": string(transaction.Type),
		"description":     transaction.Description,
		"amount":          transaction.Amount.String(),
		"category":        transaction.Category,
		"date":            transaction.Date.UTC().Format(time.RFC3339),
		"timestamp":       transaction.Timestamp.UTC().Format(time.RFC3339),
	}
	return r.docs.SetDocument(ctx, transactionsCollection, transaction.ID.String(), doc)
}

// FindByUser retrieves all transactions owned by the given identity, ordered
// by creation time.
func (r *transactionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Transaction, error) {
	docs, err := r.docs.QueryByField(ctx, transactionsCollection, "userId", userID.String())
	if err != nil {
		return nil, err
	}

	transactions := make([]*entity.Transaction, 0, len(docs))
	for _, doc := range docs {
		transaction, err := transactionFromDocument(doc)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}

	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.Before(transactions[j].Timestamp)
	})
	return transactions, nil
}

// transactionFromDocument maps a stored document back to its entity.
func transactionFromDocument(doc adapter.Document) (*entity.Transaction, error) {
	decodeErr := func(err error) error {
		return domainerror.NewPersistenceError(
			domainerror.ErrCodeDocumentDecode,
			"malformed transaction document",
			err,
		)
	}

	id, err := uuid.Parse(stringField(doc, "id"))
	if err != nil {
		return nil, decodeErr(err)
	}
	userID, err := uuid.Parse(stringField(doc, "userId"))
	if err != nil {
		return nil, decodeErr(err)
	}
	amount, err := decimal.NewFromString(stringField(doc, "amount"))
	if err != nil {
		return nil, decodeErr(err)
	}
	date, err := time.Parse(time.RFC3339, stringField(doc, "date"))
	if err != nil {
		return nil, decodeErr(err)
	}
	timestamp, err := time.Parse(time.RFC3339, stringField(doc, "timestamp"))
	if err != nil {
		return nil, decodeErr(err)
	}

	return &entity.Transaction{
		ID:          id,
		UserID:      userID,
		Type:        entity.TransactionType(stringField(doc, "transactionType")),
		Description: stringField(doc, "description"),
		Amount:      amount,
		Category:    stringField(doc, "category"),
		Date:        date,
		Timestamp:   timestamp,
	}, nil
}

func stringField(doc adapter.Document, field string) string {
	value, _ := doc[field].(string)
	return value
}
