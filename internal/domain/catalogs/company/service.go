package company

import (
	"context"

	"metalstock/internal/core/tx"
	"metalstock/internal/domain"
	"metalstock/internal/domain/audit"
)

// Service provides business logic for Company catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Company]
	repo Repository
}

// NewService creates a new Company service.
func NewService(repo Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		TxManager:  txManager,
		Recorder:   recorder,
		EntityName: "company",
		TableName:  audit.TableCompanies,
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// prepareForCreate attributes the company to the acting user.
func (s *Service) prepareForCreate(ctx context.Context, c *Company) error {
	audit.EnrichCreatedBy(ctx, &c.CreatedBy)
	return nil
}
