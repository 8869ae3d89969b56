package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	appctx "metalstock/internal/core/context"
	"metalstock/internal/core/id"
	"metalstock/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the payload size above which changes are compressed.
const DefaultCompressThreshold = 8 * 1024

// auditPayload is the compressed form of old/new data.
type auditPayload struct {
	Old json.RawMessage `json:"old,omitempty"`
	New json.RawMessage `json:"new,omitempty"`
}

type auditRow struct {
	audit.Log
	DataCompressed  []byte          `db:"data_compressed"`
	CompressionAlgo CompressionAlgo `db:"compression_algo"`
}

// AuditService writes audit_log rows in the caller's transaction and reads
// them back for the history view.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var (
	_ audit.Recorder = (*AuditService)(nil)
	_ audit.Reader   = (*AuditService)(nil)
)

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record inserts one audit row through the active transaction.
func (s *AuditService) Record(ctx context.Context, entry audit.Entry) error {
	row, err := s.buildRow(ctx, entry)
	if err != nil {
		return err
	}

	sql := `
		INSERT INTO audit_log (
			id, table_name, record_id, action, old_data, new_data,
			data_compressed, compression_algo, user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, sql,
		row.ID, row.TableName, row.RecordID, row.Action,
		nullJSON(row.OldData), nullJSON(row.NewData),
		row.DataCompressed, row.CompressionAlgo, row.UserID, row.CreatedAt,
	)
	if err != nil {
		return ClassifyError(fmt.Errorf("insert audit_log: %w", err))
	}
	return nil
}

func (s *AuditService) buildRow(ctx context.Context, entry audit.Entry) (*auditRow, error) {
	oldData, err := marshalData(entry.OldData)
	if err != nil {
		return nil, fmt.Errorf("marshal old data: %w", err)
	}
	newData, err := marshalData(entry.NewData)
	if err != nil {
		return nil, fmt.Errorf("marshal new data: %w", err)
	}

	userID := entry.UserID
	if userID == "" {
		userID = appctx.GetUserID(ctx)
	}

	row := &auditRow{
		Log: audit.Log{
			ID:        id.New(),
			TableName: entry.TableName,
			RecordID:  entry.RecordID,
			Action:    entry.Action,
			OldData:   oldData,
			NewData:   newData,
			CreatedAt: time.Now().UTC(),
		},
		CompressionAlgo: CompressionNone,
	}
	if _, err := id.Parse(userID); err == nil {
		row.UserID = &userID
	}

	if len(oldData)+len(newData) > s.compressThreshold {
		payload, err := json.Marshal(auditPayload{Old: oldData, New: newData})
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		row.DataCompressed = s.encoder.EncodeAll(payload, nil)
		row.CompressionAlgo = CompressionZstd
		row.OldData = nil
		row.NewData = nil
	}

	return row, nil
}

// List returns audit rows newest first, joined with the acting user.
// Search matches the JSON text of uncompressed rows.
func (s *AuditService) List(ctx context.Context, filter audit.Filter) ([]audit.Log, error) {
	sql, args, err := listAuditQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, ClassifyError(fmt.Errorf("list audit_log: %w", err))
	}

	logs := make([]audit.Log, 0, len(rows))
	for i := range rows {
		if err := s.inflate(&rows[i]); err != nil {
			return nil, err
		}
		logs = append(logs, rows[i].Log)
	}
	return logs, nil
}

func listAuditQuery(filter audit.Filter) squirrel.SelectBuilder {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(
			"a.id", "a.table_name", "a.record_id", "a.action",
			"a.old_data", "a.new_data", "a.data_compressed", "a.compression_algo",
			"a.user_id::text AS user_id", "u.name AS user_name", "u.email AS user_email",
			"a.created_at",
		).
		From("audit_log a").
		LeftJoin("users u ON u.id = a.user_id")

	if filter.Table != "" {
		q = q.Where(squirrel.Eq{"a.table_name": filter.Table})
	}
	if filter.Action != "" {
		q = q.Where(squirrel.Eq{"a.action": filter.Action})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"a.old_data::text": pattern},
			squirrel.ILike{"a.new_data::text": pattern},
		})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = audit.DefaultLimit
	}

	return q.OrderBy("a.created_at DESC").Limit(uint64(limit))
}

func (s *AuditService) inflate(row *auditRow) error {
	if row.CompressionAlgo != CompressionZstd || len(row.DataCompressed) == 0 {
		return nil
	}

	raw, err := s.decoder.DecodeAll(row.DataCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress audit %s: %w", row.ID, err)
	}

	var payload auditPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode audit %s: %w", row.ID, err)
	}

	row.OldData = payload.Old
	row.NewData = payload.New
	row.DataCompressed = nil
	return nil
}

func marshalData(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	switch data := v.(type) {
	case json.RawMessage:
		return data, nil
	case []byte:
		return json.RawMessage(data), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return b, nil
}

// nullJSON keeps absent data as SQL NULL instead of an empty jsonb value.
func nullJSON(data json.RawMessage) any {
	if len(data) == 0 {
		return nil
	}
	return []byte(data)
}
