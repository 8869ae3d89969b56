package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalstock/internal/core/apperror"
	"metalstock/internal/domain"
	"metalstock/internal/domain/filter"
)

func newTestRepo() *BaseCatalogRepo[any] {
	return NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "name", "is_active", "col1"}, func() any { return nil })
}

func TestApplyAdvancedFilters_Operators(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Greater",
			item:     filter.Item{Field: "col1", Operator: filter.Greater, Value: 10},
			wantSQL:  "SELECT id, name, is_active, col1 FROM test_table WHERE col1 > $1",
			wantArgs: []any{10},
		},
		{
			name:     "Less",
			item:     filter.Item{Field: "col1", Operator: filter.Less, Value: 5},
			wantSQL:  "SELECT id, name, is_active, col1 FROM test_table WHERE col1 < $1",
			wantArgs: []any{5},
		},
		{
			name:     "Contains",
			item:     filter.Item{Field: "name", Operator: filter.Contains, Value: "арм"},
			wantSQL:  "SELECT id, name, is_active, col1 FROM test_table WHERE name ILIKE $1",
			wantArgs: []any{"%арм%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{tt.item})
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestApplyAdvancedFilters_RejectsUnknownColumn(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{
		{Field: "password_hash", Operator: filter.Equal, Value: "x"},
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestListQuery_ActiveOnlyAndSearch(t *testing.T) {
	repo := newTestRepo()

	q, err := repo.listQuery(domain.ListFilter{ActiveOnly: true, Search: "  сталь "})
	require.NoError(t, err)
	q, err = repo.paginate(q, domain.ListFilter{OrderBy: "-name", Limit: 10, Offset: 20})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, name, is_active, col1 FROM test_table WHERE is_active = $1 AND name ILIKE $2 ORDER BY name DESC LIMIT 10 OFFSET 20",
		sql)
	assert.Equal(t, []any{true, "%сталь%"}, args)
}

func TestListQuery_IncludesInactive(t *testing.T) {
	repo := newTestRepo()

	q, err := repo.listQuery(domain.ListFilter{})
	require.NoError(t, err)

	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, is_active, col1 FROM test_table", sql)
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	got, err := repo.parseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "name ASC", got)

	got, err = repo.parseOrderBy("+col1")
	require.NoError(t, err)
	assert.Equal(t, "col1 ASC", got)

	_, err = repo.parseOrderBy("-drop table")
	assert.True(t, apperror.IsValidation(err))
}
