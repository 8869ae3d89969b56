package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/domain/ledger"
	"metalstock/internal/infrastructure/storage/postgres"
)

const movementsTable = "movements"

var movementColumns = postgres.ExtractDBColumns[ledger.Movement]()

// MovementRepo implements ledger.MovementRepository.
type MovementRepo struct {
	txManager *postgres.TxManager
}

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{txManager: txManager}
}

var _ ledger.MovementRepository = (*MovementRepo)(nil)

// Create inserts a movement.
func (r *MovementRepo) Create(ctx context.Context, m *ledger.Movement) error {
	sql, args, err := builder().
		Insert(movementsTable).
		SetMap(postgres.StructToMap(m)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.ClassifyError(fmt.Errorf("insert movement: %w", err))
	}
	return nil
}

// GetForUpdate reads the movement and locks its row.
func (r *MovementRepo) GetForUpdate(ctx context.Context, movementID id.ID) (*ledger.Movement, error) {
	sql, args, err := getForUpdateQuery(movementID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m ledger.Movement
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(movementsTable, movementID.String())
		}
		return nil, postgres.ClassifyError(fmt.Errorf("get movement for update: %w", err))
	}
	return &m, nil
}

func getForUpdateQuery(movementID id.ID) squirrel.SelectBuilder {
	return builder().
		Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID}).
		Suffix("FOR UPDATE")
}

// Update rewrites the mutable movement fields. Position and author are fixed.
func (r *MovementRepo) Update(ctx context.Context, m *ledger.Movement) error {
	sql, args, err := updateMovementQuery(m).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.ClassifyError(fmt.Errorf("update movement: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(movementsTable, m.ID.String())
	}
	return nil
}

func updateMovementQuery(m *ledger.Movement) squirrel.UpdateBuilder {
	return builder().
		Update(movementsTable).
		Set("operation", m.Operation).
		Set("weight", m.Weight).
		Set("cost", m.Cost).
		Set("note", m.Note).
		Set("movement_date", m.MovementDate).
		Set("updated_at", m.UpdatedAt).
		Where(squirrel.Eq{"id": m.ID})
}

// Delete removes the movement row.
func (r *MovementRepo) Delete(ctx context.Context, movementID id.ID) error {
	sql, args, err := builder().
		Delete(movementsTable).
		Where(squirrel.Eq{"id": movementID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.ClassifyError(fmt.Errorf("delete movement: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(movementsTable, movementID.String())
	}
	return nil
}

// List returns movements with position key and catalog names.
func (r *MovementRepo) List(ctx context.Context, filter ledger.MovementFilter) ([]ledger.MovementView, error) {
	sql, args, err := listMovementsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []ledger.MovementView{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list movements: %w", err))
	}
	return items, nil
}

func listMovementsQuery(filter ledger.MovementFilter) squirrel.SelectBuilder {
	q := builder().
		Select(prefixColumns("mv", movementColumns)...).
		Columns(
			"p.company_id", "p.material_id", "p.size", "p.ownership",
			"c.name AS company_name", "m.name AS material_name",
		).
		From("movements mv").
		Join("positions p ON p.id = mv.position_id").
		LeftJoin("companies c ON c.id = p.company_id").
		LeftJoin("materials m ON m.id = p.material_id")

	if filter.PositionID != nil {
		q = q.Where(squirrel.Eq{"mv.position_id": *filter.PositionID})
	}
	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"p.company_id": *filter.CompanyID})
	}
	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"p.material_id": *filter.MaterialID})
	}
	if filter.Operation != nil {
		q = q.Where(squirrel.Eq{"mv.operation": *filter.Operation})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"mv.movement_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"mv.movement_date": *filter.DateTo})
	}

	q = q.OrderBy("mv.movement_date DESC", "mv.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}
