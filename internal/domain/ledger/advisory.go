package ledger

import (
	"fmt"

	"metalstock/internal/core/entity"
	"metalstock/internal/core/types"
)

// AdvisoryResult is the prospective outcome of a movement.
// It is a UX guard against typos: the stored balance may still differ once
// concurrent movements commit, and negative balances are allowed.
type AdvisoryResult struct {
	CurrentBalance       types.Weight `json:"currentBalance"`
	ProspectiveBalance   types.Weight `json:"prospectiveBalance"`
	RequiresConfirmation bool         `json:"requiresConfirmation"`
	Message              string       `json:"message,omitempty"`
}

// AdvisoryRequest describes a movement about to be submitted.
type AdvisoryRequest struct {
	Key
	Operation entity.Operation
	Weight    types.Weight
}

// Advise computes the balance after applying weight with op to current.
// Confirmation is required only when an expense would leave the position negative.
func Advise(current types.Weight, op entity.Operation, weight types.Weight) AdvisoryResult {
	prospective := current + op.Signed(weight)
	res := AdvisoryResult{
		CurrentBalance:     current,
		ProspectiveBalance: prospective,
	}
	if op == entity.OperationExpense && prospective.IsNegative() {
		res.RequiresConfirmation = true
		res.Message = NegativeBalanceMessage(prospective)
	}
	return res
}

// NegativeBalanceMessage is the confirmation prompt shown to the operator.
func NegativeBalanceMessage(prospective types.Weight) string {
	return fmt.Sprintf("Остаток станет отрицательным (%s т). Продолжить?", prospective)
}
