package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"metalstock/internal/domain/audit"
	"metalstock/internal/infrastructure/http/v1/dto"
)

// AuditService is implemented by audit.Service.
type AuditService interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Log, error)
}

// AuditHandler serves the change history.
type AuditHandler struct {
	*BaseHandler
	service AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, service AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, service: service}
}

// List handles GET /audit?table=&action=&search=&limit=
func (h *AuditHandler) List(c *gin.Context) {
	filter := audit.Filter{
		Table:  c.Query("table"),
		Action: audit.Action(c.Query("action")),
		Search: c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", audit.DefaultLimit),
	}

	logs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewItemsResponse(logs))
}
