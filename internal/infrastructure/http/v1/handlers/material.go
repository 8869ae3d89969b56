package handlers

import (
	"metalstock/internal/domain/catalogs/material"
	"metalstock/internal/infrastructure/http/v1/dto"
)

type MaterialHTTPHandler = CatalogHandler[
	*material.Material,
	dto.CreateMaterialRequest,
	dto.UpdateMaterialRequest,
]

func NewMaterialHandler(base *BaseHandler, service *material.Service) *MaterialHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*material.Material,
		dto.CreateMaterialRequest,
		dto.UpdateMaterialRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "material",
		MapCreateDTO: func(req dto.CreateMaterialRequest) *material.Material {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateMaterialRequest, existing *material.Material) *material.Material {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *material.Material) any {
			return dto.FromMaterial(entity)
		},
	})
}
