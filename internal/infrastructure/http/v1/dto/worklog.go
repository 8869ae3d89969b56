package dto

import (
	"github.com/shopspring/decimal"

	"metalstock/internal/core/id"
	"metalstock/internal/domain/worklog"
)

// CreateWorkLogRequest records billable work at the current service price.
type CreateWorkLogRequest struct {
	CompanyID  id.ID           `json:"companyId" binding:"required"`
	MaterialID *id.ID          `json:"materialId"`
	ServiceID  id.ID           `json:"serviceId" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Note       string          `json:"note"`
	WorkDate   *Date           `json:"workDate"`
}

// ToInput converts DTO to domain input.
func (r *CreateWorkLogRequest) ToInput() worklog.Input {
	return worklog.Input{
		CompanyID:  r.CompanyID,
		MaterialID: r.MaterialID,
		ServiceID:  r.ServiceID,
		Quantity:   r.Quantity,
		Note:       r.Note,
		WorkDate:   r.WorkDate.TimeOrZero(),
	}
}

// UpdateWorkLogRequest edits a work log. Absent fields are kept.
// Price is never accepted: the total follows the stored unit price.
type UpdateWorkLogRequest struct {
	Quantity      *decimal.Decimal `json:"quantity"`
	MaterialID    *id.ID           `json:"materialId"`
	ClearMaterial bool             `json:"clearMaterial"`
	Note          *string          `json:"note"`
	WorkDate      *Date            `json:"workDate"`
}

// ToPatch converts DTO to domain patch.
func (r *UpdateWorkLogRequest) ToPatch() worklog.Patch {
	return worklog.Patch{
		Quantity:      r.Quantity,
		MaterialID:    r.MaterialID,
		ClearMaterial: r.ClearMaterial,
		Note:          r.Note,
		WorkDate:      r.WorkDate.TimePtr(),
	}
}
