package servicerate

import (
	"context"

	"metalstock/internal/core/tx"
	"metalstock/internal/domain"
	"metalstock/internal/domain/audit"
)

// Service provides business logic for the service price list.
type Service struct {
	*domain.CatalogService[*ServiceRate]
}

// NewService creates a new ServiceRate service.
func NewService(repo Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*ServiceRate]{
		Repo:       repo,
		TxManager:  txManager,
		Recorder:   recorder,
		EntityName: "service_rate",
		TableName:  audit.TableServiceRates,
	})
	svc := &Service{CatalogService: base}
	base.Hooks().OnBeforeUpdate(svc.normalizePrice)
	base.Hooks().OnBeforeCreate(svc.normalizePrice)
	return svc
}

// normalizePrice keeps two decimal places as stored by NUMERIC(14,2).
func (s *Service) normalizePrice(_ context.Context, r *ServiceRate) error {
	r.Price = r.Price.Round(2)
	return nil
}
