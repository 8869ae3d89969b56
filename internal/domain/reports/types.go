// Package reports provides dashboard statistics.
package reports

import (
	"github.com/shopspring/decimal"

	"metalstock/internal/core/types"
)

// UnknownMaterial labels balances whose material row is missing.
const UnknownMaterial = "Неизвестный"

// Totals are ledger-wide sums computed by storage.
type Totals struct {
	TotalIncome    types.Weight `db:"total_income"`
	TotalExpense   types.Weight `db:"total_expense"`
	MovementCount  int64        `db:"movement_count"`
	CurrentStock   types.Weight `db:"current_stock"`
	TotalWorkValue types.Money  `db:"total_work_value"`
}

// MaterialBalance is the summed balance of all positions of one material.
type MaterialBalance struct {
	MaterialName *string      `db:"material_name"`
	Balance      types.Weight `db:"balance"`
}

// MaterialShare is one slice of the stock distribution chart.
type MaterialShare struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	TotalIncome          types.Weight    `json:"totalIncome"`
	TotalExpense         types.Weight    `json:"totalExpense"`
	CurrentStock         types.Weight    `json:"currentStock"`
	TotalWorkValue       types.Money     `json:"totalWorkValue"`
	MovementCount        int64           `json:"movementCount"`
	MaterialDistribution []MaterialShare `json:"materialDistribution"`
}
