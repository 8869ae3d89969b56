package entity

import (
	"context"
	"strings"

	"metalstock/internal/core/apperror"
)

// Catalog is the base type for reference data: companies, materials, service rates.
// Entries are deactivated rather than removed in normal use.
type Catalog struct {
	BaseEntity

	// Name is the display name
	Name string `db:"name" json:"name"`

	// IsActive hides the entry from pickers when false
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewCatalog creates a new active Catalog with generated ID.
func NewCatalog(name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		IsActive:   true,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// SetActive toggles visibility.
func (c *Catalog) SetActive(active bool) {
	c.IsActive = active
	c.Touch()
}
