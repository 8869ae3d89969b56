package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "metalstock/internal/core/context"
	"metalstock/internal/core/id"
	"metalstock/internal/domain/audit"
)

func newTestAuditService(t *testing.T) *AuditService {
	t.Helper()
	s, err := NewAuditService(nil)
	require.NoError(t, err)
	return s
}

func TestAuditBuildRow_SmallPayloadStaysInline(t *testing.T) {
	s := newTestAuditService(t)
	userID := id.New().String()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: userID})

	row, err := s.buildRow(ctx, audit.Entry{
		TableName: audit.TableMaterials,
		RecordID:  id.New(),
		Action:    audit.ActionInsert,
		NewData:   map[string]string{"name": "Арматура"},
	})
	require.NoError(t, err)

	assert.Equal(t, CompressionNone, row.CompressionAlgo)
	assert.Nil(t, row.OldData)
	assert.JSONEq(t, `{"name":"Арматура"}`, string(row.NewData))
	require.NotNil(t, row.UserID)
	assert.Equal(t, userID, *row.UserID)
}

func TestAuditBuildRow_LargePayloadRoundTrips(t *testing.T) {
	s := newTestAuditService(t)
	note := strings.Repeat("лист 2мм ", 2000)

	row, err := s.buildRow(context.Background(), audit.Entry{
		TableName: audit.TableMovements,
		RecordID:  id.New(),
		Action:    audit.ActionUpdate,
		OldData:   map[string]string{"note": "old"},
		NewData:   map[string]string{"note": note},
	})
	require.NoError(t, err)

	assert.Equal(t, CompressionZstd, row.CompressionAlgo)
	assert.Nil(t, row.NewData)
	assert.NotEmpty(t, row.DataCompressed)
	assert.Nil(t, row.UserID, "no principal means no user id")

	require.NoError(t, s.inflate(row))
	assert.JSONEq(t, `{"note":"old"}`, string(row.OldData))

	var got map[string]string
	require.NoError(t, json.Unmarshal(row.NewData, &got))
	assert.Equal(t, note, got["note"])
}

func TestAuditBuildRow_TypedNilIsAbsent(t *testing.T) {
	s := newTestAuditService(t)
	var missing *struct{ Name string }

	row, err := s.buildRow(context.Background(), audit.Entry{
		TableName: audit.TableCompanies,
		RecordID:  id.New(),
		Action:    audit.ActionDelete,
		OldData:   map[string]string{"name": "x"},
		NewData:   missing,
	})
	require.NoError(t, err)
	assert.Nil(t, row.NewData)
	assert.Nil(t, nullJSON(row.NewData))
}

func TestListAuditQuery(t *testing.T) {
	sql, args, err := listAuditQuery(audit.Filter{
		Table:  audit.TablePositions,
		Action: audit.ActionUpdate,
		Search: "Труба",
		Limit:  20,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM audit_log a LEFT JOIN users u ON u.id = a.user_id")
	assert.Contains(t, sql, "WHERE a.table_name = $1 AND a.action = $2 AND (a.old_data::text ILIKE $3 OR a.new_data::text ILIKE $4)")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY a.created_at DESC LIMIT 20"))
	assert.Equal(t, []any{audit.TablePositions, audit.ActionUpdate, "%Труба%", "%Труба%"}, args)
}
