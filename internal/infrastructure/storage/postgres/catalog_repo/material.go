package catalog_repo

import (
	"metalstock/internal/domain/audit"
	"metalstock/internal/domain/catalogs/material"
	"metalstock/internal/infrastructure/storage/postgres"
)

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	*BaseCatalogRepo[*material.Material]
}

// NewMaterialRepo creates a new material repository.
func NewMaterialRepo(txManager *postgres.TxManager) *MaterialRepo {
	return &MaterialRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			audit.TableMaterials,
			postgres.ExtractDBColumns[material.Material](),
			func() *material.Material { return &material.Material{} },
		),
	}
}

var _ material.Repository = (*MaterialRepo)(nil)
