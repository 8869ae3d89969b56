package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/entity"
	"metalstock/internal/core/id"
	"metalstock/internal/domain/ledger"
	"metalstock/internal/infrastructure/http/v1/dto"
	"metalstock/pkg/logger"
)

// MovementService is implemented by ledger.Service.
type MovementService interface {
	Record(ctx context.Context, in ledger.MovementInput) (*ledger.RecordResult, error)
	Reverse(ctx context.Context, movementID id.ID) error
	Update(ctx context.Context, movementID id.ID, patch ledger.MovementPatch) (*ledger.RecordResult, error)
	CheckBalance(ctx context.Context, req ledger.AdvisoryRequest) (ledger.AdvisoryResult, error)
	List(ctx context.Context, filter ledger.MovementFilter) ([]ledger.MovementView, error)
}

// MovementHandler serves the movement journal.
type MovementHandler struct {
	*BaseHandler
	service MovementService
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service MovementService) *MovementHandler {
	return &MovementHandler{BaseHandler: base, service: service}
}

// List handles GET /movements
func (h *MovementHandler) List(c *gin.Context) {
	var (
		filter ledger.MovementFilter
		ok     bool
	)
	if filter.PositionID, ok = h.ParseOptionalIDQuery(c, "positionId"); !ok {
		return
	}
	if filter.CompanyID, ok = h.ParseOptionalIDQuery(c, "companyId"); !ok {
		return
	}
	if filter.MaterialID, ok = h.ParseOptionalIDQuery(c, "materialId"); !ok {
		return
	}
	if op := c.Query("operation"); op != "" {
		operation := entity.Operation(op)
		filter.Operation = &operation
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
	filter.Limit = h.ParseIntQuery(c, "limit", ledger.DefaultMovementLimit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewItemsResponse(items))
}

// Check handles POST /movements/check. The result is advisory only.
func (h *MovementHandler) Check(c *gin.Context) {
	var req dto.CheckMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	advice, err := h.service.CheckBalance(c.Request.Context(), req.ToAdvisory())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, advice)
}

// Create handles POST /movements.
// An expense that would leave the position negative is refused with 409
// until the request carries confirmNegative. The check is advisory: when the
// balance cannot be read the movement is still recorded.
func (h *MovementHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if !req.ConfirmNegative && req.Operation == entity.OperationExpense {
		advice, err := h.service.CheckBalance(ctx, req.ToAdvisory())
		switch {
		case err == nil:
		case apperror.IsValidation(err):
			h.Error(c, err)
			return
		default:
			logger.Warn(ctx, "balance check failed, recording without confirmation",
				"company_id", req.CompanyID,
				"material_id", req.MaterialID,
				"error", err,
			)
		}
		if advice.RequiresConfirmation {
			h.Error(c, apperror.NewNegativeBalanceConfirmation(advice.Message, advice.ProspectiveBalance.String()).
				WithDetail("currentBalance", advice.CurrentBalance.String()))
			return
		}
	}

	result, err := h.service.Record(ctx, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromRecordResult(result))
}

// Update handles PUT /movements/:id
func (h *MovementHandler) Update(c *gin.Context) {
	movementID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Update(c.Request.Context(), movementID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRecordResult(result))
}

// Delete handles DELETE /movements/:id. Deleting twice is not an error.
func (h *MovementHandler) Delete(c *gin.Context) {
	movementID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Reverse(c.Request.Context(), movementID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
