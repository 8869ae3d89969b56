package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"metalstock/internal/core/apperror"
	"metalstock/internal/domain/inventory"
	"metalstock/internal/domain/ledger"
	"metalstock/internal/infrastructure/export"
	"metalstock/internal/infrastructure/http/v1/dto"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// InventoryHandler serves the aggregated stock view and its exports.
type InventoryHandler struct {
	*BaseHandler
	reader PositionReader
	locale language.Tag
}

// NewInventoryHandler creates a handler sorting names by locale.
func NewInventoryHandler(base *BaseHandler, reader PositionReader, locale language.Tag) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, reader: reader, locale: locale}
}

// Get handles GET /inventory?groupByCompany=&ownership=
func (h *InventoryHandler) Get(c *gin.Context) {
	rows, grouped, ok := h.rows(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewInventoryResponse(rows, grouped))
}

// Export handles GET /inventory/export?format=csv|xlsx with the same filters.
func (h *InventoryHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		h.Error(c, apperror.NewValidation("format must be csv or xlsx").
			WithDetail("field", "format").
			WithDetail("value", format))
		return
	}

	rows, grouped, ok := h.rows(c)
	if !ok {
		return
	}

	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch format {
	case "xlsx":
		err = export.WriteInventoryXLSX(&buf, rows, grouped)
		contentType = contentTypeXLSX
	default:
		err = export.WriteInventoryCSV(&buf, rows, grouped)
		contentType = contentTypeCSV
	}
	if err != nil {
		h.Error(c, fmt.Errorf("export inventory %s: %w", format, err))
		return
	}

	filename := fmt.Sprintf("inventory_%s.%s", time.Now().UTC().Format(dto.DateLayout), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *InventoryHandler) rows(c *gin.Context) ([]inventory.Row, bool, bool) {
	opts := inventory.Options{
		GroupByCompany: h.ParseBoolQuery(c, "groupByCompany", false),
		Locale:         h.locale,
	}
	if o := c.Query("ownership"); o != "" && o != "all" {
		ownership := ledger.Ownership(o)
		if !ownership.Valid() {
			h.Error(c, apperror.NewValidation("ownership must be own, client_storage or all").
				WithDetail("field", "ownership"))
			return nil, false, false
		}
		opts.Ownership = &ownership
	}

	positions, err := h.reader.ListPositions(c.Request.Context(), ledger.PositionFilter{})
	if err != nil {
		h.Error(c, err)
		return nil, false, false
	}

	return inventory.Aggregate(positions, opts), opts.GroupByCompany, true
}
