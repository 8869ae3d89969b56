// Package worklog records billable service work (cutting, welding...).
// A work log copies the service price at creation time; later price list
// changes never alter recorded totals.
package worklog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
)

// QuantityDigits is the fractional precision of the quantity column.
const QuantityDigits int32 = 3

// WorkLog is one billable service entry.
type WorkLog struct {
	ID         id.ID           `db:"id" json:"id"`
	CompanyID  id.ID           `db:"company_id" json:"companyId"`
	MaterialID *id.ID          `db:"material_id" json:"materialId"`
	ServiceID  id.ID           `db:"service_id" json:"serviceId"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice  types.Money     `db:"unit_price" json:"unitPrice"`
	TotalPrice types.Money     `db:"total_price" json:"totalPrice"`
	Note       *string         `db:"note" json:"note"`
	WorkDate   time.Time       `db:"work_date" json:"workDate"`
	CreatedBy  *string         `db:"created_by" json:"createdBy"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

// Owner returns the creator id or empty string.
func (w *WorkLog) Owner() string {
	if w.CreatedBy == nil {
		return ""
	}
	return *w.CreatedBy
}

// Reprice recomputes the total from the stored unit price.
func (w *WorkLog) Reprice() {
	w.TotalPrice = types.Total(w.Quantity, w.UnitPrice)
}

// Validate implements entity.Validatable.
func (w *WorkLog) Validate(_ context.Context) error {
	if id.IsNil(w.CompanyID) {
		return apperror.NewValidation("company is required").WithDetail("field", "companyId")
	}
	if id.IsNil(w.ServiceID) {
		return apperror.NewValidation("service is required").WithDetail("field", "serviceId")
	}
	if !w.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if !w.Quantity.Equal(w.Quantity.Truncate(QuantityDigits)) {
		return apperror.NewValidation("quantity has more than 3 fractional digits").
			WithDetail("field", "quantity").
			WithDetail("value", w.Quantity.String())
	}
	if w.WorkDate.IsZero() {
		return apperror.NewValidation("work date is required").WithDetail("field", "workDate")
	}
	return nil
}

// View is a work log joined with catalog names.
type View struct {
	WorkLog
	CompanyName  *string `db:"company_name" json:"companyName"`
	MaterialName *string `db:"material_name" json:"materialName"`
	ServiceName  *string `db:"service_name" json:"serviceName"`
	ServiceUnit  *string `db:"service_unit" json:"serviceUnit"`
}

// Input is the request to record work.
type Input struct {
	CompanyID  id.ID
	MaterialID *id.ID
	ServiceID  id.ID
	Quantity   decimal.Decimal
	Note       string
	WorkDate   time.Time // today when zero
}

// Patch edits a work log. Nil fields are kept.
// ClearMaterial removes the optional material reference.
type Patch struct {
	Quantity      *decimal.Decimal
	MaterialID    *id.ID
	ClearMaterial bool
	Note          *string
	WorkDate      *time.Time
}

// Filter narrows work log listings.
type Filter struct {
	CompanyID *id.ID
	ServiceID *id.ID
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

const (
	DefaultLimit = 200
	MaxLimit     = 1000
)
