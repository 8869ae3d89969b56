// Package entity provides core domain entities.
package entity

import (
	"metalstock/internal/core/apperror"
	"metalstock/internal/core/types"
)

// Operation defines movement direction against a position balance.
type Operation string

const (
	// OperationIncome increases balance (приход)
	OperationIncome Operation = "income"
	// OperationExpense decreases balance (расход)
	OperationExpense Operation = "expense"
)

// Validate checks that the operation is one of the known directions.
func (o Operation) Validate() error {
	switch o {
	case OperationIncome, OperationExpense:
		return nil
	}
	return apperror.NewValidation("operation must be income or expense").
		WithDetail("field", "operation").
		WithDetail("value", string(o))
}

// Signed returns weight with sign based on operation.
// Income = positive, Expense = negative.
func (o Operation) Signed(w types.Weight) types.Weight {
	if o == OperationExpense {
		return w.Neg()
	}
	return w
}
