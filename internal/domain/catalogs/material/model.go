// Package material provides the Material catalog (Справочник "Материалы").
package material

import (
	"metalstock/internal/core/entity"
)

// Material is a kind of metal product (rebar, pipe, sheet...).
// It carries only the base catalog fields.
type Material struct {
	entity.Catalog
}

// NewMaterial creates an active material.
func NewMaterial(name string) *Material {
	return &Material{Catalog: entity.NewCatalog(name)}
}
