package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/ledger"
	"metalstock/internal/infrastructure/http/v1/dto"
)

// PositionReader is implemented by ledger.Service.
type PositionReader interface {
	GetPosition(ctx context.Context, positionID id.ID) (*ledger.Position, error)
	GetPositionBalance(ctx context.Context, positionID id.ID) (types.Weight, error)
	ListPositions(ctx context.Context, filter ledger.PositionFilter) ([]ledger.PositionView, error)
}

// PositionHandler serves positions and their balances.
type PositionHandler struct {
	*BaseHandler
	reader PositionReader
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(base *BaseHandler, reader PositionReader) *PositionHandler {
	return &PositionHandler{BaseHandler: base, reader: reader}
}

// List handles GET /positions
func (h *PositionHandler) List(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 0)

	items, err := h.reader.ListPositions(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewItemsResponse(items))
}

// Get handles GET /positions/:id
func (h *PositionHandler) Get(c *gin.Context) {
	positionID, ok := h.ParseID(c)
	if !ok {
		return
	}

	pos, err := h.reader.GetPosition(c.Request.Context(), positionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pos)
}

// Balance handles GET /positions/:id/balance. Unknown positions report zero.
func (h *PositionHandler) Balance(c *gin.Context) {
	positionID, ok := h.ParseID(c)
	if !ok {
		return
	}

	balance, err := h.reader.GetPositionBalance(c.Request.Context(), positionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{PositionID: positionID.String(), Balance: balance})
}

func (h *PositionHandler) parseFilter(c *gin.Context) (ledger.PositionFilter, bool) {
	var (
		filter ledger.PositionFilter
		ok     bool
	)
	if filter.CompanyID, ok = h.ParseOptionalIDQuery(c, "companyId"); !ok {
		return filter, false
	}
	if filter.MaterialID, ok = h.ParseOptionalIDQuery(c, "materialId"); !ok {
		return filter, false
	}
	if o := c.Query("ownership"); o != "" && o != "all" {
		ownership := ledger.Ownership(o)
		filter.Ownership = &ownership
	}
	filter.ExcludeZero = h.ParseBoolQuery(c, "excludeZero", false)
	return filter, true
}
