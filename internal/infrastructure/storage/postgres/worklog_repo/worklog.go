// Package worklog_repo provides the PostgreSQL work log repository.
package worklog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/domain/audit"
	"metalstock/internal/domain/worklog"
	"metalstock/internal/infrastructure/storage/postgres"
)

var workLogColumns = postgres.ExtractDBColumns[worklog.WorkLog]()

// Repo implements worklog.Repository.
type Repo struct {
	txManager *postgres.TxManager
}

// NewRepo creates a new work log repository.
func NewRepo(txManager *postgres.TxManager) *Repo {
	return &Repo{txManager: txManager}
}

var _ worklog.Repository = (*Repo)(nil)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a work log.
func (r *Repo) Create(ctx context.Context, w *worklog.WorkLog) error {
	sql, args, err := builder().
		Insert(audit.TableWorkLogs).
		SetMap(postgres.StructToMap(w)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.ClassifyError(fmt.Errorf("insert work log: %w", err))
	}
	return nil
}

// GetForUpdate reads and locks a work log row.
func (r *Repo) GetForUpdate(ctx context.Context, workLogID id.ID) (*worklog.WorkLog, error) {
	sql, args, err := builder().
		Select(workLogColumns...).
		From(audit.TableWorkLogs).
		Where(squirrel.Eq{"id": workLogID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w worklog.WorkLog
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(audit.TableWorkLogs, workLogID.String())
		}
		return nil, postgres.ClassifyError(fmt.Errorf("get work log: %w", err))
	}
	return &w, nil
}

// Update rewrites the editable fields. Service and prices are written as
// given; the domain keeps unit_price frozen.
func (r *Repo) Update(ctx context.Context, w *worklog.WorkLog) error {
	sql, args, err := updateQuery(w).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.ClassifyError(fmt.Errorf("update work log: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(audit.TableWorkLogs, w.ID.String())
	}
	return nil
}

func updateQuery(w *worklog.WorkLog) squirrel.UpdateBuilder {
	return builder().
		Update(audit.TableWorkLogs).
		Set("material_id", w.MaterialID).
		Set("quantity", w.Quantity).
		Set("unit_price", w.UnitPrice).
		Set("total_price", w.TotalPrice).
		Set("note", w.Note).
		Set("work_date", w.WorkDate).
		Set("updated_at", w.UpdatedAt).
		Where(squirrel.Eq{"id": w.ID})
}

// Delete removes a work log.
func (r *Repo) Delete(ctx context.Context, workLogID id.ID) error {
	sql, args, err := builder().
		Delete(audit.TableWorkLogs).
		Where(squirrel.Eq{"id": workLogID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.ClassifyError(fmt.Errorf("delete work log: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(audit.TableWorkLogs, workLogID.String())
	}
	return nil
}

// List returns work logs joined with company, material and service names.
func (r *Repo) List(ctx context.Context, filter worklog.Filter) ([]worklog.View, error) {
	sql, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []worklog.View{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list work logs: %w", err))
	}
	return items, nil
}

func listQuery(filter worklog.Filter) squirrel.SelectBuilder {
	cols := make([]string, 0, len(workLogColumns)+4)
	for _, c := range workLogColumns {
		cols = append(cols, "w."+c)
	}
	cols = append(cols,
		"c.name AS company_name",
		"m.name AS material_name",
		"s.name AS service_name",
		"s.unit AS service_unit",
	)

	q := builder().
		Select(cols...).
		From("work_logs w").
		LeftJoin("companies c ON c.id = w.company_id").
		LeftJoin("materials m ON m.id = w.material_id").
		LeftJoin("service_rates s ON s.id = w.service_id")

	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"w.company_id": *filter.CompanyID})
	}
	if filter.ServiceID != nil {
		q = q.Where(squirrel.Eq{"w.service_id": *filter.ServiceID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"w.work_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"w.work_date": *filter.DateTo})
	}

	q = q.OrderBy("w.work_date DESC", "w.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}
