package dto

import (
	"time"

	"metalstock/internal/core/entity"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/catalogs/company"
	"metalstock/internal/domain/catalogs/material"
	"metalstock/internal/domain/catalogs/servicerate"
)

// CatalogResponse contains the fields shared by all catalog entries.
type CatalogResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromCatalog creates CatalogResponse from entity.Catalog.
func FromCatalog(c entity.Catalog) CatalogResponse {
	return CatalogResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		IsActive:  c.IsActive,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// --- Company ---

// CreateCompanyRequest is the request body for creating a company.
type CreateCompanyRequest struct {
	Name string       `json:"name" binding:"required"`
	Type company.Type `json:"type"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCompanyRequest) ToEntity() *company.Company {
	return company.NewCompany(r.Name, r.Type)
}

// UpdateCompanyRequest is the request body for updating a company.
type UpdateCompanyRequest struct {
	Name     string       `json:"name" binding:"required"`
	Type     company.Type `json:"type" binding:"required"`
	IsActive *bool        `json:"isActive"`
	Version  int          `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCompanyRequest) ApplyTo(c *company.Company) {
	c.Name = r.Name
	c.Type = r.Type
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	c.Version = r.Version
}

// CompanyResponse is the response body for a company.
type CompanyResponse struct {
	CatalogResponse
	Type      company.Type `json:"type"`
	CreatedBy *string      `json:"createdBy,omitempty"`
}

// FromCompany creates response DTO from domain entity.
func FromCompany(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		Type:            c.Type,
		CreatedBy:       c.CreatedBy,
	}
}

// --- Material ---

// CreateMaterialRequest is the request body for creating a material.
type CreateMaterialRequest struct {
	Name string `json:"name" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMaterialRequest) ToEntity() *material.Material {
	return material.NewMaterial(r.Name)
}

// UpdateMaterialRequest is the request body for updating a material.
type UpdateMaterialRequest struct {
	Name     string `json:"name" binding:"required"`
	IsActive *bool  `json:"isActive"`
	Version  int    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMaterialRequest) ApplyTo(m *material.Material) {
	m.Name = r.Name
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
	m.Version = r.Version
}

// MaterialResponse is the response body for a material.
type MaterialResponse struct {
	CatalogResponse
}

// FromMaterial creates response DTO from domain entity.
func FromMaterial(m *material.Material) *MaterialResponse {
	return &MaterialResponse{CatalogResponse: FromCatalog(m.Catalog)}
}

// --- Service rate ---

// CreateServiceRateRequest is the request body for creating a service rate.
type CreateServiceRateRequest struct {
	Name  string      `json:"name" binding:"required"`
	Price types.Money `json:"price"`
	Unit  string      `json:"unit"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateServiceRateRequest) ToEntity() *servicerate.ServiceRate {
	return servicerate.NewServiceRate(r.Name, r.Price, r.Unit)
}

// UpdateServiceRateRequest is the request body for updating a service rate.
// A new price applies to future work logs only.
type UpdateServiceRateRequest struct {
	Name     string      `json:"name" binding:"required"`
	Price    types.Money `json:"price"`
	Unit     string      `json:"unit" binding:"required"`
	IsActive *bool       `json:"isActive"`
	Version  int         `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateServiceRateRequest) ApplyTo(s *servicerate.ServiceRate) {
	s.Name = r.Name
	s.Price = r.Price
	s.Unit = r.Unit
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	s.Version = r.Version
}

// ServiceRateResponse is the response body for a service rate.
type ServiceRateResponse struct {
	CatalogResponse
	Price types.Money `json:"price"`
	Unit  string      `json:"unit"`
}

// FromServiceRate creates response DTO from domain entity.
func FromServiceRate(s *servicerate.ServiceRate) *ServiceRateResponse {
	return &ServiceRateResponse{
		CatalogResponse: FromCatalog(s.Catalog),
		Price:           s.Price,
		Unit:            s.Unit,
	}
}
