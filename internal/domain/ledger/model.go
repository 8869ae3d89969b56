// Package ledger keeps per-position stock balances for metal trading.
//
// A position is the unique (company, material, size, ownership) tuple. Its
// balance changes only through movements: every insert, delete or edit of a
// movement applies a relative delta to the position inside the same
// transaction, so the balance always equals the signed sum of its movements.
package ledger

import (
	"context"
	"strings"
	"time"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/entity"
	"metalstock/internal/core/id"
	"metalstock/internal/core/types"
)

// Ownership tells whether stock belongs to the business or is held for a client.
type Ownership string

const (
	OwnershipOwn           Ownership = "own"            // Собственный
	OwnershipClientStorage Ownership = "client_storage" // Ответственное хранение
)

// Valid reports whether o is a known ownership kind.
func (o Ownership) Valid() bool {
	switch o {
	case OwnershipOwn, OwnershipClientStorage:
		return true
	}
	return false
}

// Label returns the display name used in inventory views and exports.
func (o Ownership) Label() string {
	switch o {
	case OwnershipOwn:
		return "Собственный"
	case OwnershipClientStorage:
		return "Ответственное хранение"
	}
	return string(o)
}

// Key is the natural key of a position.
// Size is compared as-is: "530x6" and "530 x 6" are different positions.
type Key struct {
	CompanyID  id.ID
	MaterialID id.ID
	Size       string
	Ownership  Ownership
}

// Validate checks that all four key fields are present.
func (k Key) Validate() error {
	if id.IsNil(k.CompanyID) {
		return apperror.NewValidation("company is required").WithDetail("field", "companyId")
	}
	if id.IsNil(k.MaterialID) {
		return apperror.NewValidation("material is required").WithDetail("field", "materialId")
	}
	if strings.TrimSpace(k.Size) == "" {
		return apperror.NewValidation("size is required").WithDetail("field", "size")
	}
	if !k.Ownership.Valid() {
		return apperror.NewValidation("ownership must be own or client_storage").
			WithDetail("field", "ownership").
			WithDetail("value", string(k.Ownership))
	}
	return nil
}

// Position is a stock-keeping unit with its running balance in tonnes.
type Position struct {
	ID         id.ID        `db:"id" json:"id"`
	CompanyID  id.ID        `db:"company_id" json:"companyId"`
	MaterialID id.ID        `db:"material_id" json:"materialId"`
	Size       string       `db:"size" json:"size"`
	Ownership  Ownership    `db:"ownership" json:"ownership"`
	Balance    types.Weight `db:"balance" json:"balance"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updatedAt"`
}

// NewPosition creates an empty position for key.
func NewPosition(key Key) *Position {
	now := time.Now().UTC()
	return &Position{
		ID:         id.New(),
		CompanyID:  key.CompanyID,
		MaterialID: key.MaterialID,
		Size:       key.Size,
		Ownership:  key.Ownership,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Key returns the natural key of the position.
func (p *Position) Key() Key {
	return Key{
		CompanyID:  p.CompanyID,
		MaterialID: p.MaterialID,
		Size:       p.Size,
		Ownership:  p.Ownership,
	}
}

// PositionView is a position joined with catalog display names.
// Names are nil when the catalog row is missing.
type PositionView struct {
	Position
	CompanyName  *string `db:"company_name" json:"companyName"`
	MaterialName *string `db:"material_name" json:"materialName"`
}

// Movement is a signed weight transaction against a position.
// Weight is always positive; the sign comes from Operation.
type Movement struct {
	ID           id.ID            `db:"id" json:"id"`
	PositionID   id.ID            `db:"position_id" json:"positionId"`
	Operation    entity.Operation `db:"operation" json:"operation"`
	Weight       types.Weight     `db:"weight" json:"weight"`
	Cost         types.Money      `db:"cost" json:"cost"`
	Note         *string          `db:"note" json:"note"`
	MovementDate time.Time        `db:"movement_date" json:"movementDate"`
	CreatedBy    *string          `db:"created_by" json:"createdBy"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updatedAt"`
}

// Delta returns the balance contribution of the movement.
func (m *Movement) Delta() types.Weight {
	return m.Operation.Signed(m.Weight)
}

// Owner returns the creator id or empty string.
func (m *Movement) Owner() string {
	if m.CreatedBy == nil {
		return ""
	}
	return *m.CreatedBy
}

// Validate implements entity.Validatable.
func (m *Movement) Validate(_ context.Context) error {
	if err := m.Operation.Validate(); err != nil {
		return err
	}
	if !m.Weight.IsPositive() {
		return apperror.NewValidation("weight must be positive").WithDetail("field", "weight")
	}
	if m.Cost.IsNegative() {
		return apperror.NewValidation("cost must not be negative").WithDetail("field", "cost")
	}
	if m.MovementDate.IsZero() {
		return apperror.NewValidation("movement date is required").WithDetail("field", "movementDate")
	}
	return nil
}

// MovementView is a movement joined with its position and catalog names.
type MovementView struct {
	Movement
	CompanyID    id.ID     `db:"company_id" json:"companyId"`
	MaterialID   id.ID     `db:"material_id" json:"materialId"`
	Size         string    `db:"size" json:"size"`
	Ownership    Ownership `db:"ownership" json:"ownership"`
	CompanyName  *string   `db:"company_name" json:"companyName"`
	MaterialName *string   `db:"material_name" json:"materialName"`
}

// MovementInput is the request to record a movement.
type MovementInput struct {
	Key
	Operation    entity.Operation
	Weight       types.Weight
	Cost         types.Money
	Note         string
	MovementDate time.Time // today when zero
}

// MovementPatch changes an existing movement. Nil fields are kept.
// The position key cannot be changed; reverse and record again instead.
type MovementPatch struct {
	Operation    *entity.Operation
	Weight       *types.Weight
	Cost         *types.Money
	Note         *string
	MovementDate *time.Time
}

// RecordResult is a movement with the position balance right after it.
type RecordResult struct {
	Movement *Movement
	Position *Position
}

// MovementFilter narrows movement listings.
type MovementFilter struct {
	PositionID *id.ID
	CompanyID  *id.ID
	MaterialID *id.ID
	Operation  *entity.Operation
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// PositionFilter narrows position listings.
type PositionFilter struct {
	CompanyID   *id.ID
	MaterialID  *id.ID
	Ownership   *Ownership
	ExcludeZero bool
	Limit       int
}

const (
	DefaultMovementLimit = 200
	MaxMovementLimit     = 1000
)

func normalizeLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// today returns the current business date truncated to UTC midnight.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
