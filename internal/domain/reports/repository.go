package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	GetTotals(ctx context.Context) (Totals, error)
	GetMaterialBalances(ctx context.Context) ([]MaterialBalance, error)
}
