package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalstock/internal/core/entity"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/ledger"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, want, d.Time)

	d, err = ParseDate("2024-03-15T21:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, want, d.Time)

	_, err = ParseDate("15.03.2024")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	var req struct {
		A *Date `json:"a"`
		B *Date `json:"b"`
		C Date  `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2024-01-02","b":null,"c":""}`), &req))

	require.NotNil(t, req.A)
	assert.Equal(t, "2024-01-02", req.A.Format(DateLayout))
	assert.Nil(t, req.B.TimePtr())
	assert.True(t, req.B.TimeOrZero().IsZero())
	assert.Nil(t, req.C.TimePtr())

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2024-01-02","b":null,"c":null}`, string(out))
}

func TestCreateMovementRequest_ToInput(t *testing.T) {
	var req CreateMovementRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"companyId": "0190a000-0000-7000-8000-00000000000a",
		"materialId": "0190a000-0000-7000-8000-0000000000f1",
		"size": "530x6",
		"ownership": "client_storage",
		"operation": "expense",
		"weight": 1.25,
		"cost": "1000.50",
		"movementDate": "2024-05-01"
	}`), &req))

	in := req.ToInput()
	assert.Equal(t, ledger.OwnershipClientStorage, in.Ownership)
	assert.Equal(t, entity.OperationExpense, in.Operation)
	assert.Equal(t, types.MustWeight("1.25"), in.Weight)
	assert.Equal(t, "1000.5", in.Cost.String())
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), in.MovementDate)

	advice := req.ToAdvisory()
	assert.Equal(t, in.Key, advice.Key)
	assert.Equal(t, in.Weight, advice.Weight)
}

func TestUpdateMovementRequest_ToPatchKeepsAbsentFields(t *testing.T) {
	var req UpdateMovementRequest
	require.NoError(t, json.Unmarshal([]byte(`{"note":"corrected"}`), &req))

	patch := req.ToPatch()
	require.NotNil(t, patch.Note)
	assert.Equal(t, "corrected", *patch.Note)
	assert.Nil(t, patch.Weight)
	assert.Nil(t, patch.Operation)
	assert.Nil(t, patch.MovementDate)
}

func TestNewInventoryResponse_NeverNull(t *testing.T) {
	resp := NewInventoryResponse(nil, true)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"total":0.000,"groupByCompany":true}`, string(out))
}
