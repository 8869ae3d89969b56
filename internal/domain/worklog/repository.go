package worklog

import (
	"context"

	"metalstock/internal/core/id"
	"metalstock/internal/domain/catalogs/servicerate"
)

// Repository persists work logs.
type Repository interface {
	Create(ctx context.Context, w *WorkLog) error
	GetForUpdate(ctx context.Context, id id.ID) (*WorkLog, error)
	Update(ctx context.Context, w *WorkLog) error
	Delete(ctx context.Context, id id.ID) error

	// List returns logs by work_date DESC, created_at DESC.
	List(ctx context.Context, filter Filter) ([]View, error)
}

// RateReader loads the current service price.
type RateReader interface {
	GetByID(ctx context.Context, id id.ID) (*servicerate.ServiceRate, error)
}
