// Package servicerate provides the service price list (Справочник "Работы"):
// welding, cutting and other billable work with a price per unit.
package servicerate

import (
	"context"
	"strings"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/entity"
	"metalstock/internal/core/types"
)

// DefaultUnit is used when a new rate is created without a unit label.
const DefaultUnit = "шт"

// ServiceRate is a billable service with its current price.
// Work logs copy Price at creation time; changing it never touches history.
type ServiceRate struct {
	entity.Catalog

	Price types.Money `db:"price" json:"price"`

	// Unit is a free-text label: "т", "шт", "м.п.", "час"
	Unit string `db:"unit" json:"unit"`
}

// NewServiceRate creates an active rate.
func NewServiceRate(name string, price types.Money, unit string) *ServiceRate {
	if strings.TrimSpace(unit) == "" {
		unit = DefaultUnit
	}
	return &ServiceRate{
		Catalog: entity.NewCatalog(name),
		Price:   price,
		Unit:    strings.TrimSpace(unit),
	}
}

// Validate implements entity.Validatable interface.
func (r *ServiceRate) Validate(ctx context.Context) error {
	if err := r.Catalog.Validate(ctx); err != nil {
		return err
	}
	if r.Price.IsNegative() {
		return apperror.NewValidation("price must not be negative").
			WithDetail("field", "price")
	}
	r.Unit = strings.TrimSpace(r.Unit)
	if r.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}
	return nil
}
