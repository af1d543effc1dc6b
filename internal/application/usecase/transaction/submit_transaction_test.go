package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/application/store"
	"github.com/finance-tracker/client/internal/domain/entity"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
)

// recordingRepository counts saves and can fail them.
type recordingRepository struct {
	saved   []*entity.Transaction
	saveErr error
}

func (r *recordingRepository) Save(ctx context.Context, transaction *entity.Transaction) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, transaction)
	return nil
}

func (r *recordingRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Transaction, error) {
	var out []*entity.Transaction
	for _, transaction := range r.saved {
		if transaction.UserID == userID {
			out = append(out, transaction)
		}
	}
	return out, nil
}

func validInput(userID uuid.UUID) SubmitTransactionInput {
	return SubmitTransactionInput{
		UserID:      userID,
		Type:        "expense",
		Description: "groceries",
		Amount:      decimal.RequireFromString("40"),
		Category:    "Food",
		Date:        "2026-08-15",
	}
}

func TestSubmitTransaction(t *testing.T) {
	t.Run("persists then appends to the store", func(t *testing.T) {
		userID := uuid.New()
		repo := &recordingRepository{}
		txStore := store.NewTransactionStore(repo)
		if err := txStore.Populate(context.Background(), userID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		uc := NewSubmitTransactionUseCase(repo, txStore)
		output, err := uc.Execute(context.Background(), validInput(userID))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Transaction.ID == uuid.Nil {
			t.Error("expected an assigned transaction id")
		}
		if len(repo.saved) != 1 {
			t.Fatalf("expected 1 persisted transaction, got %d", len(repo.saved))
		}

		snapshot := txStore.Snapshot()
		if len(snapshot.Transactions) != 1 {
			t.Fatalf("expected 1 transaction in store, got %d", len(snapshot.Transactions))
		}
		if got := snapshot.Aggregate.TotalExpense.String(); got != "40" {
			t.Errorf("expected expense 40, got %s", got)
		}
	})

	t.Run("requires a signed-in identity before any IO", func(t *testing.T) {
		repo := &recordingRepository{}
		uc := NewSubmitTransactionUseCase(repo, store.NewTransactionStore(repo))

		_, err := uc.Execute(context.Background(), validInput(uuid.Nil))

		var authErr *domainerror.AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %v", err)
		}
		if authErr.Code != domainerror.ErrCodeUnauthenticated {
			t.Errorf("expected code %s, got %s", domainerror.ErrCodeUnauthenticated, authErr.Code)
		}
		if len(repo.saved) != 0 {
			t.Error("no transaction may be persisted for an unauthenticated submit")
		}
	})

	t.Run("rejects invalid fields without persisting", func(t *testing.T) {
		userID := uuid.New()
		cases := []struct {
			name   string
			mutate func(*SubmitTransactionInput)
			code   domainerror.ValidationErrorCode
			field  string
		}{
			{
				name:   "unknown type",
				mutate: func(in *SubmitTransactionInput) { in.Type = "transfer" },
				code:   domainerror.ErrCodeInvalidTransactionType,
				field:  "transactionType",
			},
			{
				name:   "empty description",
				mutate: func(in *SubmitTransactionInput) { in.Description = "" },
				code:   domainerror.ErrCodeEmptyDescription,
				field:  "description",
			},
			{
				name:   "zero amount",
				mutate: func(in *SubmitTransactionInput) { in.Amount = decimal.Zero },
				code:   domainerror.ErrCodeInvalidTransactionAmount,
				field:  "amount",
			},
			{
				name:   "negative amount",
				mutate: func(in *SubmitTransactionInput) { in.Amount = decimal.RequireFromString("-5") },
				code:   domainerror.ErrCodeInvalidTransactionAmount,
				field:  "amount",
			},
			{
				name:   "empty category",
				mutate: func(in *SubmitTransactionInput) { in.Category = "" },
				code:   domainerror.ErrCodeEmptyCategory,
				field:  "category",
			},
			{
				name:   "unparseable date",
				mutate: func(in *SubmitTransactionInput) { in.Date = "15/08/2026" },
				code:   domainerror.ErrCodeInvalidTransactionDate,
				field:  "date",
			},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo := &recordingRepository{}
				txStore := store.NewTransactionStore(repo)
				if err := txStore.Populate(context.Background(), userID); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				uc := NewSubmitTransactionUseCase(repo, txStore)

				input := validInput(userID)
				tc.mutate(&input)

				_, err := uc.Execute(context.Background(), input)

				var validationErr *domainerror.ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if validationErr.Code != tc.code {
					t.Errorf("expected code %s, got %s", tc.code, validationErr.Code)
				}
				if validationErr.Field != tc.field {
					t.Errorf("expected field %s, got %s", tc.field, validationErr.Field)
				}
				if len(repo.saved) != 0 {
					t.Error("invalid input must not be persisted")
				}
			})
		}
	})

	t.Run("accepts RFC3339 dates", func(t *testing.T) {
		userID := uuid.New()
		repo := &recordingRepository{}
		txStore := store.NewTransactionStore(repo)
		if err := txStore.Populate(context.Background(), userID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		uc := NewSubmitTransactionUseCase(repo, txStore)

		input := validInput(userID)
		input.Date = "2026-08-15T10:30:00Z"

		if _, err := uc.Execute(context.Background(), input); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("persist failure surfaces and nothing is appended", func(t *testing.T) {
		userID := uuid.New()
		repo := &recordingRepository{saveErr: errors.New("write refused")}
		txStore := store.NewTransactionStore(repo)
		if err := txStore.Populate(context.Background(), userID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		uc := NewSubmitTransactionUseCase(repo, txStore)

		_, err := uc.Execute(context.Background(), validInput(userID))
		if err == nil {
			t.Fatal("expected error")
		}
		if len(txStore.Snapshot().Transactions) != 0 {
			t.Error("failed persist must not reach the store")
		}
	})

	t.Run("stale append after identity switch still succeeds", func(t *testing.T) {
		userID := uuid.New()
		repo := &recordingRepository{}
		txStore := store.NewTransactionStore(repo)
		// The store holds a different identity by the time the persist lands.
		if err := txStore.Populate(context.Background(), uuid.New()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		uc := NewSubmitTransactionUseCase(repo, txStore)

		output, err := uc.Execute(context.Background(), validInput(userID))
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if output.Transaction == nil {
			t.Fatal("expected the persisted transaction in the output")
		}
		if len(repo.saved) != 1 {
			t.Errorf("expected the write to be durable, got %d saves", len(repo.saved))
		}
		if len(txStore.Snapshot().Transactions) != 0 {
			t.Error("stale append must not reach the store")
		}
	})
}
