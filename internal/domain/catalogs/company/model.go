// Package company provides the Company catalog (Справочник "Компании"):
// suppliers and buyers whose stock is tracked in positions.
package company

import (
	"context"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/entity"
)

// Type defines the role of a company in trade.
type Type string

const (
	TypeSupplier Type = "supplier" // Поставщик
	TypeBuyer    Type = "buyer"    // Покупатель
	TypeBoth     Type = "both"     // Поставщик и покупатель
)

// Company represents a trading partner.
type Company struct {
	entity.Catalog

	Type Type `db:"type" json:"type"`

	// CreatedBy is stamped from the acting user on create
	CreatedBy *string `db:"created_by" json:"createdBy"`
}

// NewCompany creates an active company.
func NewCompany(name string, companyType Type) *Company {
	if companyType == "" {
		companyType = TypeBoth
	}
	return &Company{
		Catalog: entity.NewCatalog(name),
		Type:    companyType,
	}
}

// Validate implements entity.Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return apperror.NewValidation("invalid company type").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}
	return nil
}

// Valid reports whether t is a known company type.
func (t Type) Valid() bool {
	switch t {
	case TypeSupplier, TypeBuyer, TypeBoth:
		return true
	}
	return false
}
