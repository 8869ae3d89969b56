// Package audit records every mutation of ledger and catalog tables together
// with the acting user, and serves the history view.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"metalstock/internal/core/id"
)

// Action is the kind of row change.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Audited table names.
const (
	TableCompanies    = "companies"
	TableMaterials    = "materials"
	TableServiceRates = "service_rates"
	TablePositions    = "positions"
	TableMovements    = "movements"
	TableWorkLogs     = "work_logs"
	TableUsers        = "users"
)

// Entry is one change to record. OldData/NewData are marshalled to JSON.
type Entry struct {
	TableName string
	RecordID  id.ID
	Action    Action
	OldData   any
	NewData   any
	UserID    string // defaults to the request principal
}

// Recorder writes entries through the caller's active transaction, so a
// mutation and its audit row commit or roll back together.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NopRecorder discards entries.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) error { return nil }

// Log is a stored audit row as shown in the history view.
type Log struct {
	ID        id.ID           `db:"id" json:"id"`
	TableName string          `db:"table_name" json:"tableName"`
	RecordID  id.ID           `db:"record_id" json:"recordId"`
	Action    Action          `db:"action" json:"action"`
	OldData   json.RawMessage `db:"old_data" json:"oldData,omitempty"`
	NewData   json.RawMessage `db:"new_data" json:"newData,omitempty"`
	UserID    *string         `db:"user_id" json:"userId,omitempty"`
	UserName  *string         `db:"user_name" json:"userName,omitempty"`
	UserEmail *string         `db:"user_email" json:"userEmail,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Filter narrows the history view.
type Filter struct {
	Table  string
	Action Action
	Search string
	Limit  int
}

const (
	DefaultLimit = 100
	MaxLimit     = 500
)
