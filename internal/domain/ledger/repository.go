package ledger

import (
	"context"

	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
)

// PositionRepository persists positions.
type PositionRepository interface {
	// FindByKey returns the position matching all four key fields exactly,
	// or a NotFound AppError.
	FindByKey(ctx context.Context, key Key) (*Position, error)

	// InsertIfAbsent inserts p unless the key already exists.
	// It reports false when the row was not inserted because of the key.
	// A Duplicate AppError may still be returned on a unique violation.
	InsertIfAbsent(ctx context.Context, p *Position) (bool, error)

	// GetByID retrieves a position or a NotFound AppError.
	GetByID(ctx context.Context, id id.ID) (*Position, error)

	// ApplyDelta atomically adds delta to the stored balance and returns the
	// resulting position.
	ApplyDelta(ctx context.Context, positionID id.ID, delta types.Weight) (*Position, error)

	// List returns positions joined with catalog names, newest change first.
	List(ctx context.Context, filter PositionFilter) ([]PositionView, error)
}

// MovementRepository persists movements.
type MovementRepository interface {
	Create(ctx context.Context, m *Movement) error

	// GetForUpdate locks the movement row until the transaction ends.
	GetForUpdate(ctx context.Context, id id.ID) (*Movement, error)

	Update(ctx context.Context, m *Movement) error
	Delete(ctx context.Context, id id.ID) error

	// List returns movements by movement_date DESC, created_at DESC.
	List(ctx context.Context, filter MovementFilter) ([]MovementView, error)
}

// Metrics receives ledger counters.
type Metrics interface {
	PositionResolved(outcome string)
	MovementRecorded(op string)
	MovementReversed(op string)
}

// Resolve outcomes.
const (
	OutcomeFound         = "found"
	OutcomeCreated       = "created"
	OutcomeConflictRetry = "conflict_retry"
)

type nopMetrics struct{}

func (nopMetrics) PositionResolved(string) {}
func (nopMetrics) MovementRecorded(string) {}
func (nopMetrics) MovementReversed(string) {}
