package servicerate

import (
	"metalstock/internal/domain"
)

// Repository defines the interface for ServiceRate persistence.
type Repository interface {
	domain.CatalogRepository[*ServiceRate]
}
