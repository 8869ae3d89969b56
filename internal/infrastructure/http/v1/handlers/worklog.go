package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"metalstock/internal/core/id"
	"metalstock/internal/domain/worklog"
	"metalstock/internal/infrastructure/http/v1/dto"
)

// WorkLogService is implemented by worklog.Service.
type WorkLogService interface {
	Record(ctx context.Context, in worklog.Input) (*worklog.WorkLog, error)
	Reverse(ctx context.Context, workLogID id.ID) error
	Update(ctx context.Context, workLogID id.ID, patch worklog.Patch) (*worklog.WorkLog, error)
	List(ctx context.Context, filter worklog.Filter) ([]worklog.View, error)
}

// WorkLogHandler serves billable work entries.
type WorkLogHandler struct {
	*BaseHandler
	service WorkLogService
}

// NewWorkLogHandler creates a new work log handler.
func NewWorkLogHandler(base *BaseHandler, service WorkLogService) *WorkLogHandler {
	return &WorkLogHandler{BaseHandler: base, service: service}
}

// List handles GET /work-logs
func (h *WorkLogHandler) List(c *gin.Context) {
	var (
		filter worklog.Filter
		ok     bool
	)
	if filter.CompanyID, ok = h.ParseOptionalIDQuery(c, "companyId"); !ok {
		return
	}
	if filter.ServiceID, ok = h.ParseOptionalIDQuery(c, "serviceId"); !ok {
		return
	}
	from, ok := h.ParseOptionalDateQuery(c, "dateFrom")
	if !ok {
		return
	}
	to, ok := h.ParseOptionalDateQuery(c, "dateTo")
	if !ok {
		return
	}
	filter.DateFrom = from.TimePtr()
	filter.DateTo = to.TimePtr()
	filter.Limit = h.ParseIntQuery(c, "limit", worklog.DefaultLimit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewItemsResponse(items))
}

// Create handles POST /work-logs
func (h *WorkLogHandler) Create(c *gin.Context) {
	var req dto.CreateWorkLogRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := h.service.Record(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, w)
}

// Update handles PUT /work-logs/:id
func (h *WorkLogHandler) Update(c *gin.Context) {
	workLogID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateWorkLogRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w, err := h.service.Update(c.Request.Context(), workLogID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, w)
}

// Delete handles DELETE /work-logs/:id
func (h *WorkLogHandler) Delete(c *gin.Context) {
	workLogID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Reverse(c.Request.Context(), workLogID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
