// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction (expense or income).
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// TransactionCategories is the vocabulary offered by the transaction form.
// Stored transactions may carry any non-empty category; this list is not a
// closed set at the data-model level.
var TransactionCategories = []string{
	"Housing",
	"Food",
	"Transportation",
	"Utilities",
	"Entertainment",
	"Bills",
	"Shopping",
	"Health",
	"Other",
}

// Transaction represents a single recorded money movement belonging to one
// identity. Transactions are immutable once created; the store only replaces
// or clears whole collections.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        TransactionType
	Description string
	Amount      decimal.Decimal // Always positive; Type carries the sign.
	Category    string
	Date        time.Time // User-chosen occurrence date.
	Timestamp   time.Time // System-assigned creation time.
}

// NewTransaction creates a new Transaction entity with a fresh ID and a
// creation timestamp.
func NewTransaction(
	userID uuid.UUID,
	transactionType TransactionType,
	description string,
	amount decimal.Decimal,
	category string,
	date time.Time,
) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        transactionType,
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        date,
		Timestamp:   time.Now().UTC(),
	}
}
