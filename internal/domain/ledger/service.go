package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/core/security"
	"metalstock/internal/core/tx"
	"metalstock/internal/core/types"
	"metalstock/internal/domain/audit"
	"metalstock/pkg/logger"
)

// Service records, reverses and edits movements.
// Each mutation runs in one transaction that also applies the balance delta
// and writes the audit trail.
type Service struct {
	positions PositionRepository
	movements MovementRepository
	resolver  *Resolver
	txManager tx.Manager
	recorder  audit.Recorder
	metrics   Metrics
}

// ServiceConfig wires the ledger service.
type ServiceConfig struct {
	Positions PositionRepository
	Movements MovementRepository
	Resolver  *Resolver
	TxManager tx.Manager
	Recorder  audit.Recorder // Optional
	Metrics   Metrics        // Optional
}

// NewService creates a ledger service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		positions: cfg.Positions,
		movements: cfg.Movements,
		resolver:  cfg.Resolver,
		txManager: cfg.TxManager,
		recorder:  cfg.Recorder,
		metrics:   cfg.Metrics,
	}
	if s.recorder == nil {
		s.recorder = audit.NopRecorder{}
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	return s
}

// Record resolves the position and adds a movement to it.
// Negative balances are permitted.
func (s *Service) Record(ctx context.Context, in MovementInput) (*RecordResult, error) {
	user, err := security.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Key.Validate(); err != nil {
		return nil, err
	}

	movementDate := in.MovementDate
	if movementDate.IsZero() {
		movementDate = today()
	}

	now := time.Now().UTC()
	createdBy := user.UserID
	m := &Movement{
		ID:           id.New(),
		Operation:    in.Operation,
		Weight:       in.Weight,
		Cost:         in.Cost.Round(types.MoneyScale),
		Note:         optionalNote(in.Note),
		MovementDate: movementDate,
		CreatedBy:    &createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	var updated *Position
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pos, err := s.resolver.ResolveOrCreate(ctx, in.Key)
		if err != nil {
			return err
		}
		m.PositionID = pos.ID

		if err := s.movements.Create(ctx, m); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}
		if err := s.record(ctx, audit.TableMovements, m.ID, audit.ActionInsert, nil, m); err != nil {
			return err
		}

		updated, err = s.applyDelta(ctx, pos.ID, m.Delta())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MovementRecorded(string(m.Operation))
	logger.Info(ctx, "movement recorded",
		"movement_id", m.ID,
		"position_id", updated.ID,
		"operation", m.Operation,
		"delta", m.Delta(),
		"balance", updated.Balance,
	)

	return &RecordResult{Movement: m, Position: updated}, nil
}

// Reverse deletes a movement and takes its contribution off the balance.
// Reversing a movement that no longer exists succeeds without changes.
func (s *Service) Reverse(ctx context.Context, movementID id.ID) error {
	if _, err := security.RequireActor(ctx); err != nil {
		return err
	}

	var (
		reversed *Movement
		updated  *Position
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.movements.GetForUpdate(ctx, movementID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("lock movement: %w", err)
		}
		if err := security.AuthorizeRecordMutation(ctx, "movement", m.Owner()); err != nil {
			return err
		}

		if err := s.movements.Delete(ctx, m.ID); err != nil {
			return fmt.Errorf("delete movement: %w", err)
		}
		if err := s.record(ctx, audit.TableMovements, m.ID, audit.ActionDelete, m, nil); err != nil {
			return err
		}

		updated, err = s.applyDelta(ctx, m.PositionID, m.Delta().Neg())
		if err != nil {
			return err
		}
		reversed = m
		return nil
	})
	if err != nil {
		return err
	}

	if reversed == nil {
		logger.Info(ctx, "movement already reversed", "movement_id", movementID)
		return nil
	}

	s.metrics.MovementReversed(string(reversed.Operation))
	logger.Info(ctx, "movement reversed",
		"movement_id", reversed.ID,
		"position_id", updated.ID,
		"delta", reversed.Delta().Neg(),
		"balance", updated.Balance,
	)
	return nil
}

// Update edits operation, weight, cost, note or date of a movement and
// applies the difference of its balance contribution.
func (s *Service) Update(ctx context.Context, movementID id.ID, patch MovementPatch) (*RecordResult, error) {
	if _, err := security.RequireActor(ctx); err != nil {
		return nil, err
	}

	var (
		result *RecordResult
		delta  types.Weight
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.movements.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if err := security.AuthorizeRecordMutation(ctx, "movement", old.Owner()); err != nil {
			return err
		}

		m := *old
		patch.apply(&m)
		if err := m.Validate(ctx); err != nil {
			return err
		}
		m.UpdatedAt = time.Now().UTC()

		if err := s.movements.Update(ctx, &m); err != nil {
			return fmt.Errorf("update movement: %w", err)
		}
		if err := s.record(ctx, audit.TableMovements, m.ID, audit.ActionUpdate, old, &m); err != nil {
			return err
		}

		var pos *Position
		delta = m.Delta() - old.Delta()
		if delta.IsZero() {
			pos, err = s.positions.GetByID(ctx, m.PositionID)
			if err != nil {
				return fmt.Errorf("get position: %w", err)
			}
		} else {
			pos, err = s.applyDelta(ctx, m.PositionID, delta)
			if err != nil {
				return err
			}
		}

		result = &RecordResult{Movement: &m, Position: pos}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "movement updated",
		"movement_id", movementID,
		"position_id", result.Position.ID,
		"delta", delta,
		"balance", result.Position.Balance,
	)
	return result, nil
}

// CheckBalance runs the advisory check against the stored balance.
// The read does not lock; an unknown position counts as zero.
func (s *Service) CheckBalance(ctx context.Context, req AdvisoryRequest) (AdvisoryResult, error) {
	if err := req.Key.Validate(); err != nil {
		return AdvisoryResult{}, err
	}
	if err := req.Operation.Validate(); err != nil {
		return AdvisoryResult{}, err
	}
	if !req.Weight.IsPositive() {
		return AdvisoryResult{}, apperror.NewValidation("weight must be positive").WithDetail("field", "weight")
	}

	var current types.Weight
	pos, err := s.positions.FindByKey(ctx, req.Key)
	switch {
	case err == nil:
		current = pos.Balance
	case apperror.IsNotFound(err):
	default:
		return AdvisoryResult{}, fmt.Errorf("find position: %w", err)
	}

	return Advise(current, req.Operation, req.Weight), nil
}

// List returns movements newest business date first.
func (s *Service) List(ctx context.Context, filter MovementFilter) ([]MovementView, error) {
	if filter.Operation != nil {
		if err := filter.Operation.Validate(); err != nil {
			return nil, err
		}
	}
	filter.Limit = normalizeLimit(filter.Limit, DefaultMovementLimit, MaxMovementLimit)
	return s.movements.List(ctx, filter)
}

// GetPosition retrieves a position by id.
func (s *Service) GetPosition(ctx context.Context, positionID id.ID) (*Position, error) {
	return s.positions.GetByID(ctx, positionID)
}

// GetPositionBalance returns the stored balance, or zero for an unknown position.
func (s *Service) GetPositionBalance(ctx context.Context, positionID id.ID) (types.Weight, error) {
	pos, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return pos.Balance, nil
}

// ListPositions returns positions joined with catalog names.
func (s *Service) ListPositions(ctx context.Context, filter PositionFilter) ([]PositionView, error) {
	if filter.Ownership != nil && !filter.Ownership.Valid() {
		return nil, apperror.NewValidation("ownership must be own or client_storage").
			WithDetail("field", "ownership")
	}
	return s.positions.List(ctx, filter)
}

func (s *Service) applyDelta(ctx context.Context, positionID id.ID, delta types.Weight) (*Position, error) {
	updated, err := s.positions.ApplyDelta(ctx, positionID, delta)
	if err != nil {
		return nil, fmt.Errorf("apply balance delta: %w", err)
	}
	if err := s.record(ctx, audit.TablePositions, positionID, audit.ActionUpdate,
		map[string]any{"balance": updated.Balance - delta},
		map[string]any{"balance": updated.Balance},
	); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) record(ctx context.Context, table string, recordID id.ID, action audit.Action, oldData, newData any) error {
	if err := s.recorder.Record(ctx, audit.Entry{
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		OldData:   oldData,
		NewData:   newData,
	}); err != nil {
		return fmt.Errorf("audit %s: %w", table, err)
	}
	return nil
}

func (p MovementPatch) apply(m *Movement) {
	if p.Operation != nil {
		m.Operation = *p.Operation
	}
	if p.Weight != nil {
		m.Weight = *p.Weight
	}
	if p.Cost != nil {
		m.Cost = p.Cost.Round(types.MoneyScale)
	}
	if p.Note != nil {
		m.Note = optionalNote(*p.Note)
	}
	if p.MovementDate != nil {
		m.MovementDate = *p.MovementDate
	}
}

func optionalNote(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
