package dto

import (
	"metalstock/internal/core/entity"
	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/inventory"
	"metalstock/internal/domain/ledger"
)

// PositionKey identifies a position in requests.
type PositionKey struct {
	CompanyID  id.ID            `json:"companyId" binding:"required"`
	MaterialID id.ID            `json:"materialId" binding:"required"`
	Size       string           `json:"size" binding:"required"`
	Ownership  ledger.Ownership `json:"ownership" binding:"required"`
}

func (k PositionKey) toKey() ledger.Key {
	return ledger.Key{
		CompanyID:  k.CompanyID,
		MaterialID: k.MaterialID,
		Size:       k.Size,
		Ownership:  k.Ownership,
	}
}

// CreateMovementRequest records income or expense against a position.
// ConfirmNegative acknowledges that an expense takes the balance below zero.
type CreateMovementRequest struct {
	PositionKey
	Operation       entity.Operation `json:"operation" binding:"required"`
	Weight          types.Weight     `json:"weight"`
	Cost            types.Money      `json:"cost"`
	Note            string           `json:"note"`
	MovementDate    *Date            `json:"movementDate"`
	ConfirmNegative bool             `json:"confirmNegative"`
}

// ToInput converts DTO to domain input.
func (r *CreateMovementRequest) ToInput() ledger.MovementInput {
	return ledger.MovementInput{
		Key:          r.toKey(),
		Operation:    r.Operation,
		Weight:       r.Weight,
		Cost:         r.Cost,
		Note:         r.Note,
		MovementDate: r.MovementDate.TimeOrZero(),
	}
}

// ToAdvisory builds the advisory request for the same movement.
func (r *CreateMovementRequest) ToAdvisory() ledger.AdvisoryRequest {
	return ledger.AdvisoryRequest{
		Key:       r.toKey(),
		Operation: r.Operation,
		Weight:    r.Weight,
	}
}

// CheckMovementRequest asks for the prospective balance of a movement.
type CheckMovementRequest struct {
	PositionKey
	Operation entity.Operation `json:"operation" binding:"required"`
	Weight    types.Weight     `json:"weight"`
}

// ToAdvisory converts DTO to domain request.
func (r *CheckMovementRequest) ToAdvisory() ledger.AdvisoryRequest {
	return ledger.AdvisoryRequest{
		Key:       r.toKey(),
		Operation: r.Operation,
		Weight:    r.Weight,
	}
}

// UpdateMovementRequest edits a movement. Absent fields are kept.
type UpdateMovementRequest struct {
	Operation    *entity.Operation `json:"operation"`
	Weight       *types.Weight     `json:"weight"`
	Cost         *types.Money      `json:"cost"`
	Note         *string           `json:"note"`
	MovementDate *Date             `json:"movementDate"`
}

// ToPatch converts DTO to domain patch.
func (r *UpdateMovementRequest) ToPatch() ledger.MovementPatch {
	return ledger.MovementPatch{
		Operation:    r.Operation,
		Weight:       r.Weight,
		Cost:         r.Cost,
		Note:         r.Note,
		MovementDate: r.MovementDate.TimePtr(),
	}
}

// MovementResultResponse is a movement with the balance right after it.
type MovementResultResponse struct {
	Movement *ledger.Movement `json:"movement"`
	Position *ledger.Position `json:"position"`
}

// FromRecordResult creates response DTO from the ledger result.
func FromRecordResult(r *ledger.RecordResult) *MovementResultResponse {
	return &MovementResultResponse{Movement: r.Movement, Position: r.Position}
}

// BalanceResponse is the stored balance of one position.
type BalanceResponse struct {
	PositionID string       `json:"positionId"`
	Balance    types.Weight `json:"balance"`
}

// InventoryResponse is the aggregated stock view.
type InventoryResponse struct {
	Items          []inventory.Row `json:"items"`
	Total          types.Weight    `json:"total"`
	GroupByCompany bool            `json:"groupByCompany"`
}

// NewInventoryResponse sums rows into the response.
func NewInventoryResponse(rows []inventory.Row, grouped bool) InventoryResponse {
	if rows == nil {
		rows = []inventory.Row{}
	}
	return InventoryResponse{
		Items:          rows,
		Total:          inventory.TotalBalance(rows),
		GroupByCompany: grouped,
	}
}
