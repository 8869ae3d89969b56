package handlers

import (
	"metalstock/internal/domain/catalogs/servicerate"
	"metalstock/internal/infrastructure/http/v1/dto"
)

// ServiceRateHTTPHandler serves the price list.
type ServiceRateHTTPHandler = CatalogHandler[
	*servicerate.ServiceRate,
	dto.CreateServiceRateRequest,
	dto.UpdateServiceRateRequest,
]

// NewServiceRateHandler creates the price list handler.
func NewServiceRateHandler(base *BaseHandler, service *servicerate.Service) *ServiceRateHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*servicerate.ServiceRate,
		dto.CreateServiceRateRequest,
		dto.UpdateServiceRateRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "service_rate",
		MapCreateDTO: func(req dto.CreateServiceRateRequest) *servicerate.ServiceRate {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateServiceRateRequest, existing *servicerate.ServiceRate) *servicerate.ServiceRate {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *servicerate.ServiceRate) any {
			return dto.FromServiceRate(entity)
		},
	})
}
