package worklog_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/worklog"
)

func TestUpdateQuery_KeepsServiceAndAuthor(t *testing.T) {
	w := &worklog.WorkLog{
		ID:         id.New(),
		CompanyID:  id.New(),
		ServiceID:  id.New(),
		Quantity:   decimal.RequireFromString("4"),
		UnitPrice:  types.MustMoney("100.00"),
		TotalPrice: types.MustMoney("400.00"),
		WorkDate:   time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Now().UTC(),
	}

	sql, args, err := updateQuery(w).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "service_id")
	assert.NotContains(t, sql, "company_id")
	assert.NotContains(t, sql, "created_by")
	assert.True(t, strings.HasSuffix(sql, "WHERE id = $8"))
	assert.Equal(t, w.ID.String(), args[len(args)-1])
}

func TestListQuery(t *testing.T) {
	serviceID := id.New()
	to := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	sql, args, err := listQuery(worklog.Filter{ServiceID: &serviceID, DateTo: &to, Limit: 10}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "s.unit AS service_unit FROM work_logs w")
	assert.Contains(t, sql, "LEFT JOIN service_rates s ON s.id = w.service_id")
	assert.Contains(t, sql, "WHERE w.service_id = $1 AND w.work_date <= $2")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY w.work_date DESC, w.created_at DESC LIMIT 10"))
	assert.Equal(t, []any{serviceID.String(), to}, args)
}
