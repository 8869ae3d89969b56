package catalog_repo

import (
	"metalstock/internal/domain/audit"
	"metalstock/internal/domain/catalogs/servicerate"
	"metalstock/internal/infrastructure/storage/postgres"
)

// ServiceRateRepo implements servicerate.Repository.
// It also serves as the worklog rate reader.
type ServiceRateRepo struct {
	*BaseCatalogRepo[*servicerate.ServiceRate]
}

// NewServiceRateRepo creates a new service rate repository.
func NewServiceRateRepo(txManager *postgres.TxManager) *ServiceRateRepo {
	return &ServiceRateRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			audit.TableServiceRates,
			postgres.ExtractDBColumns[servicerate.ServiceRate](),
			func() *servicerate.ServiceRate { return &servicerate.ServiceRate{} },
		),
	}
}

var _ servicerate.Repository = (*ServiceRateRepo)(nil)
