// Package entity defines the core business entities for the domain layer.
package entity

import "github.com/shopspring/decimal"

// Aggregate holds the derived totals and category breakdown computed from a
// full transaction collection. It is always recomputed from scratch via
// ComputeAggregate; no code path patches individual fields.
type Aggregate struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal // TotalIncome - TotalExpense; may be negative.

	// CategoryBreakdown maps category to the summed amount of expense-type
	// transactions. Iteration order is not significant.
	CategoryBreakdown map[string]decimal.Decimal
}

// EmptyAggregate returns the aggregate of the empty collection.
func EmptyAggregate() Aggregate {
	return Aggregate{
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
		Balance:           decimal.Zero,
		CategoryBreakdown: map[string]decimal.Decimal{},
	}
}

// ComputeAggregate folds a transaction collection into its Aggregate. It is a
// pure function: no I/O, no hidden incremental state, deterministic for any
// finite input including the empty one.
func ComputeAggregate(transactions []*Transaction) Aggregate {
	aggregate := EmptyAggregate()

	for _, transaction := range transactions {
		switch transaction.Type {
		case TransactionTypeIncome:
			aggregate.TotalIncome = aggregate.TotalIncome.Add(transaction.Amount)
		case TransactionTypeExpense:
			aggregate.TotalExpense = aggregate.TotalExpense.Add(transaction.Amount)
			current, ok := aggregate.CategoryBreakdown[transaction.Category]
			if !ok {
				current = decimal.Zero
			}
			aggregate.CategoryBreakdown[transaction.Category] = current.Add(transaction.Amount)
		}
	}

	aggregate.Balance = aggregate.TotalIncome.Sub(aggregate.TotalExpense)
	return aggregate
}
