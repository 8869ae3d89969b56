package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalstock/internal/core/types"
)

type stubRepo struct {
	totals   Totals
	balances []MaterialBalance
	err      error
}

func (s stubRepo) GetTotals(context.Context) (Totals, error) { return s.totals, s.err }

func (s stubRepo) GetMaterialBalances(context.Context) ([]MaterialBalance, error) {
	return s.balances, nil
}

func name(s string) *string { return &s }

func TestDistribution(t *testing.T) {
	shares := Distribution([]MaterialBalance{
		{MaterialName: name("Труба"), Balance: types.MustWeight("1.004")},
		{MaterialName: name("Арматура"), Balance: types.MustWeight("3.500")},
		{MaterialName: name("Труба"), Balance: types.MustWeight("2.000")},
		{MaterialName: name("Лист"), Balance: types.MustWeight("-1.000")},
		{MaterialName: name("Уголок"), Balance: types.MustWeight("0.004")},
		{MaterialName: nil, Balance: types.MustWeight("0.500")},
	})

	require.Len(t, shares, 3)
	assert.Equal(t, "Арматура", shares[0].Name)
	assert.Equal(t, "3.5", shares[0].Value.String())
	assert.Equal(t, "Труба", shares[1].Name)
	assert.Equal(t, "3", shares[1].Value.String())
	assert.Equal(t, UnknownMaterial, shares[2].Name)
	assert.Equal(t, "0.5", shares[2].Value.String())
}

func TestService_Dashboard(t *testing.T) {
	svc := NewService(stubRepo{
		totals: Totals{
			TotalIncome:    types.MustWeight("12.000"),
			TotalExpense:   types.MustWeight("7.000"),
			MovementCount:  3,
			CurrentStock:   types.MustWeight("5.000"),
			TotalWorkValue: types.MustMoney("300.004"),
		},
		balances: []MaterialBalance{{MaterialName: name("Арматура"), Balance: types.MustWeight("5.000")}},
	})

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.MustWeight("5.000"), d.CurrentStock)
	assert.Equal(t, int64(3), d.MovementCount)
	assert.True(t, types.MustMoney("300").Equal(d.TotalWorkValue))
	require.Len(t, d.MaterialDistribution, 1)
}

func TestService_DashboardError(t *testing.T) {
	svc := NewService(stubRepo{err: errors.New("down")})
	_, err := svc.Dashboard(context.Background())
	require.Error(t, err)
}
