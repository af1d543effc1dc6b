// Package transaction contains transaction-related use cases.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/application/store"
	"github.com/finance-tracker/client/internal/domain/entity"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
)

// dateLayouts are the accepted formats for the user-chosen transaction date.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// SubmitTransactionInput represents the input for submitting a transaction.
type SubmitTransactionInput struct {
	UserID      uuid.UUID
	Type        string
	Description string
	Amount      decimal.Decimal
	Category    string
	Date        string // ISO-8601 date or date/time.
}

// SubmitTransactionOutput represents the output of submitting a transaction.
type SubmitTransactionOutput struct {
	Transaction *entity.Transaction
}

// SubmitTransactionUseCase is the single write path through which new
// transactions enter the store and the persistence provider. A transaction
// becomes visible in the store's aggregate only after it has been durably
// persisted; there is no optimistic local-only state.
type SubmitTransactionUseCase struct {
	transactionRepo adapter.TransactionRepository
	txStore         *store.TransactionStore
}

// NewSubmitTransactionUseCase creates a new SubmitTransactionUseCase instance.
func NewSubmitTransactionUseCase(
	transactionRepo adapter.TransactionRepository,
	txStore *store.TransactionStore,
) *SubmitTransactionUseCase {
	return &SubmitTransactionUseCase{
		transactionRepo: transactionRepo,
		txStore:         txStore,
	}
}

// Execute validates the input, persists the transaction and appends it to the
// store. Validation and authentication failures perform no I/O.
func (uc *SubmitTransactionUseCase) Execute(ctx context.Context, input SubmitTransactionInput) (*SubmitTransactionOutput, error) {
	if input.UserID == uuid.Nil {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeUnauthenticated,
			"a signed-in identity is required to submit transactions",
			domainerror.ErrUnauthenticated,
		)
	}

	date, err := uc.validate(input)
	if err != nil {
		return nil, err
	}

	transaction := entity.NewTransaction(
		input.UserID,
		entity.TransactionType(input.Type),
		input.Description,
		input.Amount,
		input.Category,
		date,
	)

	if err := uc.transactionRepo.Save(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}

	if err := uc.txStore.Append(transaction); err != nil {
		if errors.Is(err, domainerror.ErrStaleAppend) {
			// The identity changed while the persist call was in flight. The
			// write is durable; it will surface on the owner's next populate.
			slog.Debug("Persisted transaction not appended to store",
				"transaction_id", transaction.ID,
				"user_id", transaction.UserID,
			)
			return &SubmitTransactionOutput{Transaction: transaction}, nil
		}
		return nil, err
	}

	return &SubmitTransactionOutput{Transaction: transaction}, nil
}

// validate checks the field constraints and parses the date. It returns a
// ValidationError naming the offending field.
func (uc *SubmitTransactionUseCase) validate(input SubmitTransactionInput) (time.Time, error) {
	transactionType := entity.TransactionType(input.Type)
	if transactionType != entity.TransactionTypeIncome && transactionType != entity.TransactionTypeExpense {
		return time.Time{}, domainerror.NewValidationError(
			domainerror.ErrCodeInvalidTransactionType,
			"transactionType",
			"transaction type must be 'expense' or 'income'",
			domainerror.ErrInvalidTransactionType,
		)
	}

	if input.Description == "" {
		return time.Time{}, domainerror.NewValidationError(
			domainerror.ErrCodeEmptyDescription,
			"description",
			"description is required",
			domainerror.ErrEmptyDescription,
		)
	}

	if !input.Amount.IsPositive() {
		return time.Time{}, domainerror.NewValidationError(
			domainerror.ErrCodeInvalidTransactionAmount,
			"amount",
			"amount must be greater than zero",
			domainerror.ErrInvalidTransactionAmount,
		)
	}

	if input.Category == "" {
		return time.Time{}, domainerror.NewValidationError(
			domainerror.ErrCodeEmptyCategory,
			"category",
			"category is required",
			domainerror.ErrEmptyCategory,
		)
	}

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, input.Date); err == nil {
			return date, nil
		}
	}
	return time.Time{}, domainerror.NewValidationError(
		domainerror.ErrCodeInvalidTransactionDate,
		"date",
		"date must be an ISO-8601 date",
		domainerror.ErrInvalidTransactionDate,
	)
}
