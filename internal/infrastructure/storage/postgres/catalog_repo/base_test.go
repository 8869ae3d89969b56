package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/catalogs/company"
	"metalstock/internal/domain/catalogs/servicerate"
	"metalstock/internal/infrastructure/storage/postgres"
)

func TestSetActiveQuery(t *testing.T) {
	repo := newTestRepo()
	entityID := id.New()

	sql, args, err := repo.setActiveQuery(entityID, false).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE test_table SET is_active = $1, updated_at = now(), version = version + 1 WHERE id = $2", sql)
	assert.Equal(t, []any{false, entityID.String()}, args)
}

func TestUpdateQuery_OptimisticLockSkipsImmutableColumns(t *testing.T) {
	repo := NewBaseCatalogRepo(nil, "companies",
		postgres.ExtractDBColumns[company.Company](),
		func() *company.Company { return &company.Company{} })

	c := company.NewCompany("ООО Металл", company.TypeSupplier)
	c.Version = 3

	q, entityID, err := repo.updateQuery(c)
	require.NoError(t, err)
	assert.Equal(t, c.ID, entityID)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE id = $")
	assert.Contains(t, sql, "AND version = $")
	assert.Contains(t, sql, "version = version + 1")
	assert.NotContains(t, sql, "created_by =")
	assert.NotContains(t, sql, "created_at =")
	assert.Equal(t, 3, args[len(args)-1])
}

func TestInsertQuery_UsesTaggedColumns(t *testing.T) {
	repo := NewBaseCatalogRepo(nil, "service_rates",
		postgres.ExtractDBColumns[servicerate.ServiceRate](),
		func() *servicerate.ServiceRate { return &servicerate.ServiceRate{} })

	rate := servicerate.NewServiceRate("Резка", types.MustMoney("150.00"), "рез")

	q, err := repo.insertQuery(rate)
	require.NoError(t, err)
	sql, _, err := q.ToSql()
	require.NoError(t, err)
	for _, col := range []string{"id", "name", "is_active", "price", "unit", "version"} {
		assert.Contains(t, sql, col)
	}
}
