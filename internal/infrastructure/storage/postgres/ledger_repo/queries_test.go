package ledger_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalstock/internal/core/entity"
	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/ledger"
)

func TestFindByKeyQuery_MatchesAllFourFieldsVerbatim(t *testing.T) {
	key := ledger.Key{
		CompanyID:  id.New(),
		MaterialID: id.New(),
		Size:       "12 ",
		Ownership:  ledger.OwnershipOwn,
	}

	sql, args, err := findByKeyQuery(key).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM positions WHERE company_id = $1 AND material_id = $2 AND ownership = $3 AND size = $4 LIMIT 1")
	assert.Equal(t, []any{key.CompanyID.String(), key.MaterialID.String(), key.Ownership, "12 "}, args)
}

func TestInsertIfAbsentQuery(t *testing.T) {
	p := ledger.NewPosition(ledger.Key{
		CompanyID:  id.New(),
		MaterialID: id.New(),
		Size:       "6м",
		Ownership:  ledger.OwnershipClientStorage,
	})

	sql, args, err := insertIfAbsentQuery(p).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO positions (id,company_id,material_id,size,ownership,balance,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)"))
	assert.True(t, strings.HasSuffix(sql, "ON CONFLICT (company_id, material_id, size, ownership) DO NOTHING RETURNING id"))
	assert.Len(t, args, 8)
	assert.Equal(t, types.Weight(0), args[5])
}

func TestApplyDeltaQuery_IsRelative(t *testing.T) {
	positionID := id.New()
	delta := types.MustWeight("-2.500")

	sql, args, err := applyDeltaQuery(positionID, delta).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "UPDATE positions SET balance = balance + $1, updated_at = now() WHERE id = $2 RETURNING id, "))
	assert.Equal(t, []any{delta, positionID.String()}, args)
}

func TestListPositionsQuery(t *testing.T) {
	companyID := id.New()
	own := ledger.OwnershipOwn

	sql, args, err := listPositionsQuery(ledger.PositionFilter{
		CompanyID:   &companyID,
		Ownership:   &own,
		ExcludeZero: true,
		Limit:       50,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "c.name AS company_name, m.name AS material_name FROM positions p")
	assert.Contains(t, sql, "LEFT JOIN companies c ON c.id = p.company_id LEFT JOIN materials m ON m.id = p.material_id")
	assert.Contains(t, sql, "WHERE p.company_id = $1 AND p.ownership = $2 AND p.balance <> $3")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY p.updated_at DESC, p.id LIMIT 50"))
	assert.Equal(t, []any{companyID.String(), own, 0}, args)
}

func TestGetForUpdateQuery_LocksRow(t *testing.T) {
	movementID := id.New()

	sql, args, err := getForUpdateQuery(movementID).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(sql, "FROM movements WHERE id = $1 FOR UPDATE"))
	assert.Equal(t, []any{movementID.String()}, args)
}

func TestUpdateMovementQuery_KeepsPositionAndAuthor(t *testing.T) {
	m := &ledger.Movement{
		ID:           id.New(),
		PositionID:   id.New(),
		Operation:    entity.OperationExpense,
		Weight:       types.MustWeight("1.250"),
		Cost:         types.MustMoney("100.00"),
		MovementDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Now().UTC(),
	}

	sql, _, err := updateMovementQuery(m).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "position_id")
	assert.NotContains(t, sql, "created_by")
	assert.Contains(t, sql, "WHERE id = $7")
}

func TestListMovementsQuery_OrderAndFilters(t *testing.T) {
	op := entity.OperationIncome
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := listMovementsQuery(ledger.MovementFilter{
		Operation: &op,
		DateFrom:  &from,
		Limit:     200,
		Offset:    400,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM movements mv JOIN positions p ON p.id = mv.position_id")
	assert.Contains(t, sql, "WHERE mv.operation = $1 AND mv.movement_date >= $2")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY mv.movement_date DESC, mv.created_at DESC LIMIT 200 OFFSET 400"))
	assert.Equal(t, []any{op, from}, args)
}
