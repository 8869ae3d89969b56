package material

import (
	"metalstock/internal/core/tx"
	"metalstock/internal/domain"
	"metalstock/internal/domain/audit"
)

// Service provides business logic for Material catalog.
type Service struct {
	*domain.CatalogService[*Material]
}

// NewService creates a new Material service.
func NewService(repo Repository, txManager tx.Manager, recorder audit.Recorder) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Material]{
			Repo:       repo,
			TxManager:  txManager,
			Recorder:   recorder,
			EntityName: "material",
			TableName:  audit.TableMaterials,
		}),
	}
}
