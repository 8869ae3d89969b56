package audit

import (
	"context"
	"strings"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/security"
)

// Reader loads stored audit rows.
type Reader interface {
	List(ctx context.Context, filter Filter) ([]Log, error)
}

// Service serves the admin-only history view.
type Service struct {
	reader Reader
}

func NewService(reader Reader) *Service {
	return &Service{reader: reader}
}

// List returns the newest audit rows first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Log, error) {
	if err := security.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	switch filter.Action {
	case "", ActionInsert, ActionUpdate, ActionDelete:
	default:
		return nil, apperror.NewValidation("invalid action filter").
			WithDetail("field", "action").
			WithDetail("value", string(filter.Action))
	}

	filter.Table = strings.TrimSpace(filter.Table)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}

	return s.reader.List(ctx, filter)
}
