// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"metalstock/internal/domain/reports"
	"metalstock/internal/infrastructure/storage/postgres"
)

const totalsQuery = `
	SELECT
		COALESCE((SELECT SUM(weight) FROM movements WHERE operation = 'income'), 0)  AS total_income,
		COALESCE((SELECT SUM(weight) FROM movements WHERE operation = 'expense'), 0) AS total_expense,
		(SELECT COUNT(*) FROM movements)                                               AS movement_count,
		COALESCE((SELECT SUM(balance) FROM positions), 0)                              AS current_stock,
		COALESCE((SELECT SUM(total_price) FROM work_logs), 0)                          AS total_work_value
`

const materialBalancesQuery = `
	SELECT m.name AS material_name, SUM(p.balance) AS balance
	FROM positions p
	LEFT JOIN materials m ON m.id = p.material_id
	GROUP BY p.material_id, m.name
`

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

var _ reports.Repository = (*ReportRepo)(nil)

// GetTotals returns ledger-wide sums in one round trip.
func (r *ReportRepo) GetTotals(ctx context.Context) (reports.Totals, error) {
	var totals reports.Totals
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &totals, totalsQuery); err != nil {
		return totals, postgres.ClassifyError(fmt.Errorf("query totals: %w", err))
	}
	return totals, nil
}

// GetMaterialBalances sums balances per material, negative ones included.
func (r *ReportRepo) GetMaterialBalances(ctx context.Context) ([]reports.MaterialBalance, error) {
	items := []reports.MaterialBalance{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, materialBalancesQuery); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("query material balances: %w", err))
	}
	return items, nil
}
