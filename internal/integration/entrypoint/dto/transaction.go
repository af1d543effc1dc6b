// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/application/store"
	"github.com/finance-tracker/client/internal/domain/entity"
)

// SubmitTransactionRequest represents the request body for submitting a
// transaction. Amount travels as a string to avoid float rounding.
type SubmitTransactionRequest struct {
	Type        string `json:"transaction_type" binding:"required"`
	Description string `json:"description" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Date        string `json:"date" binding:"required"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"transaction_type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Timestamp   time.Time       `json:"timestamp"`
}

// TransactionListResponse represents the store snapshot for the listing
// endpoint: the full collection plus its derived aggregate.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Aggregate    AggregateResponse     `json:"aggregate"`
	Loading      bool                  `json:"loading"`
	Error        string                `json:"error,omitempty"`
}

// ToTransactionResponse converts a domain Transaction to its API representation.
func ToTransactionResponse(transaction *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          transaction.ID.String(),
		Type:        string(transaction.Type),
		Description: transaction.Description,
		Amount:      transaction.Amount,
		Category:    transaction.Category,
		Date:        transaction.Date,
		Timestamp:   transaction.Timestamp,
	}
}

// ToTransactionListResponse converts a store snapshot to its API representation.
func ToTransactionListResponse(snapshot store.Snapshot) TransactionListResponse {
	transactions := make([]TransactionResponse, 0, len(snapshot.Transactions))
	for _, transaction := range snapshot.Transactions {
		transactions = append(transactions, ToTransactionResponse(transaction))
	}

	response := TransactionListResponse{
		Transactions: transactions,
		Aggregate:    ToAggregateResponse(snapshot.Aggregate),
		Loading:      snapshot.Loading,
	}
	if snapshot.Err != nil {
		response.Error = snapshot.Err.Error()
	}
	return response
}
