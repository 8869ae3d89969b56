package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Dashboard returns ledger totals and the per-material stock distribution.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	totals, err := s.repo.GetTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("get totals: %w", err)
	}

	balances, err := s.repo.GetMaterialBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("get material balances: %w", err)
	}

	return &Dashboard{
		TotalIncome:          totals.TotalIncome,
		TotalExpense:         totals.TotalExpense,
		CurrentStock:         totals.CurrentStock,
		TotalWorkValue:       totals.TotalWorkValue.Round(2),
		MovementCount:        totals.MovementCount,
		MaterialDistribution: Distribution(balances),
	}, nil
}

// Distribution merges balances by material name, rounds to 2 places and
// keeps only positive values, largest first.
func Distribution(balances []MaterialBalance) []MaterialShare {
	sums := make(map[string]decimal.Decimal)
	order := make([]string, 0, len(balances))
	for _, b := range balances {
		name := UnknownMaterial
		if b.MaterialName != nil && *b.MaterialName != "" {
			name = *b.MaterialName
		}
		if _, ok := sums[name]; !ok {
			order = append(order, name)
		}
		sums[name] = sums[name].Add(decimal.New(b.Balance.Int64Scaled(), -3))
	}

	shares := make([]MaterialShare, 0, len(order))
	for _, name := range order {
		value := sums[name].Round(2)
		if !value.IsPositive() {
			continue
		}
		shares = append(shares, MaterialShare{Name: name, Value: value})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Value.GreaterThan(shares[j].Value)
	})
	return shares
}
