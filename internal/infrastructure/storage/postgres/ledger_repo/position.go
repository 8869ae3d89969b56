// Package ledger_repo provides PostgreSQL implementations for positions and movements.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/ledger"
	"metalstock/internal/infrastructure/storage/postgres"
)

const positionsTable = "positions"

var positionColumns = postgres.ExtractDBColumns[ledger.Position]()

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// PositionRepo implements ledger.PositionRepository.
type PositionRepo struct {
	txManager *postgres.TxManager
}

// NewPositionRepo creates a new position repository.
func NewPositionRepo(txManager *postgres.TxManager) *PositionRepo {
	return &PositionRepo{txManager: txManager}
}

var _ ledger.PositionRepository = (*PositionRepo)(nil)

// FindByKey matches all four key fields exactly; size is compared as stored.
func (r *PositionRepo) FindByKey(ctx context.Context, key ledger.Key) (*ledger.Position, error) {
	sql, args, err := findByKeyQuery(key).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p ledger.Position
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(positionsTable, key.Size)
		}
		return nil, postgres.ClassifyError(fmt.Errorf("find position by key: %w", err))
	}
	return &p, nil
}

func findByKeyQuery(key ledger.Key) squirrel.SelectBuilder {
	return builder().
		Select(positionColumns...).
		From(positionsTable).
		Where(squirrel.Eq{
			"company_id":  key.CompanyID,
			"material_id": key.MaterialID,
			"size":        key.Size,
			"ownership":   key.Ownership,
		}).
		Limit(1)
}

// InsertIfAbsent inserts p and reports whether this call created the row.
// A concurrent insert of the same key yields (false, nil).
func (r *PositionRepo) InsertIfAbsent(ctx context.Context, p *ledger.Position) (bool, error) {
	sql, args, err := insertIfAbsentQuery(p).ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	var insertedID id.ID
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&insertedID)
	if pgxscan.NotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, postgres.ClassifyError(fmt.Errorf("insert position: %w", err))
	}
	return true, nil
}

func insertIfAbsentQuery(p *ledger.Position) squirrel.InsertBuilder {
	return builder().
		Insert(positionsTable).
		Columns("id", "company_id", "material_id", "size", "ownership", "balance", "created_at", "updated_at").
		Values(p.ID, p.CompanyID, p.MaterialID, p.Size, p.Ownership, p.Balance, p.CreatedAt, p.UpdatedAt).
		Suffix("ON CONFLICT (company_id, material_id, size, ownership) DO NOTHING RETURNING id")
}

// GetByID retrieves a position.
func (r *PositionRepo) GetByID(ctx context.Context, positionID id.ID) (*ledger.Position, error) {
	sql, args, err := builder().
		Select(positionColumns...).
		From(positionsTable).
		Where(squirrel.Eq{"id": positionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p ledger.Position
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(positionsTable, positionID.String())
		}
		return nil, postgres.ClassifyError(fmt.Errorf("get position: %w", err))
	}
	return &p, nil
}

// ApplyDelta lets PostgreSQL add delta to the current balance under the row
// lock, so concurrent deltas on one position serialize without lost updates.
func (r *PositionRepo) ApplyDelta(ctx context.Context, positionID id.ID, delta types.Weight) (*ledger.Position, error) {
	sql, args, err := applyDeltaQuery(positionID, delta).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var p ledger.Position
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(positionsTable, positionID.String())
		}
		return nil, postgres.ClassifyError(fmt.Errorf("apply delta: %w", err))
	}
	return &p, nil
}

func applyDeltaQuery(positionID id.ID, delta types.Weight) squirrel.UpdateBuilder {
	return builder().
		Update(positionsTable).
		Set("balance", squirrel.Expr("balance + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": positionID}).
		Suffix("RETURNING " + joinColumns(positionColumns))
}

// List returns positions joined with company and material names.
func (r *PositionRepo) List(ctx context.Context, filter ledger.PositionFilter) ([]ledger.PositionView, error) {
	sql, args, err := listPositionsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []ledger.PositionView{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list positions: %w", err))
	}
	return items, nil
}

func listPositionsQuery(filter ledger.PositionFilter) squirrel.SelectBuilder {
	q := builder().
		Select(prefixColumns("p", positionColumns)...).
		Columns("c.name AS company_name", "m.name AS material_name").
		From("positions p").
		LeftJoin("companies c ON c.id = p.company_id").
		LeftJoin("materials m ON m.id = p.material_id")

	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"p.company_id": *filter.CompanyID})
	}
	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"p.material_id": *filter.MaterialID})
	}
	if filter.Ownership != nil {
		q = q.Where(squirrel.Eq{"p.ownership": *filter.Ownership})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"p.balance": 0})
	}

	q = q.OrderBy("p.updated_at DESC", "p.id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q
}
