package worklog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/core/security"
	"metalstock/internal/core/tx"
	"metalstock/internal/domain/audit"
	"metalstock/pkg/logger"
)

// Service records and edits work logs.
type Service struct {
	repo      Repository
	rates     RateReader
	txManager tx.Manager
	recorder  audit.Recorder
}

// NewService creates a work log service.
func NewService(repo Repository, rates RateReader, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{
		repo:      repo,
		rates:     rates,
		txManager: txManager,
		recorder:  recorder,
	}
}

// Record freezes the current service price into a new work log.
func (s *Service) Record(ctx context.Context, in Input) (*WorkLog, error) {
	user, err := security.RequireActor(ctx)
	if err != nil {
		return nil, err
	}

	workDate := in.WorkDate
	if workDate.IsZero() {
		now := time.Now().UTC()
		workDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	now := time.Now().UTC()
	createdBy := user.UserID
	w := &WorkLog{
		ID:         id.New(),
		CompanyID:  in.CompanyID,
		MaterialID: in.MaterialID,
		ServiceID:  in.ServiceID,
		Quantity:   in.Quantity,
		Note:       optionalNote(in.Note),
		WorkDate:   workDate,
		CreatedBy:  &createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := w.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rate, err := s.rates.GetByID(ctx, w.ServiceID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("service not found").
					WithDetail("field", "serviceId").
					WithDetail("value", w.ServiceID.String())
			}
			return fmt.Errorf("load service rate: %w", err)
		}
		w.UnitPrice = rate.Price
		w.Reprice()

		if err := s.repo.Create(ctx, w); err != nil {
			return fmt.Errorf("create work log: %w", err)
		}
		return s.record(ctx, w.ID, audit.ActionInsert, nil, w)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "work logged",
		"work_log_id", w.ID,
		"service_id", w.ServiceID,
		"quantity", w.Quantity,
		"total_price", w.TotalPrice,
	)
	return w, nil
}

// Reverse deletes a work log. A missing log is a no-op.
func (s *Service) Reverse(ctx context.Context, workLogID id.ID) error {
	if _, err := security.RequireActor(ctx); err != nil {
		return err
	}

	deleted := false
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		w, err := s.repo.GetForUpdate(ctx, workLogID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("lock work log: %w", err)
		}
		if err := security.AuthorizeRecordMutation(ctx, "work_log", w.Owner()); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, w.ID); err != nil {
			return fmt.Errorf("delete work log: %w", err)
		}
		deleted = true
		return s.record(ctx, w.ID, audit.ActionDelete, w, nil)
	})
	if err != nil {
		return err
	}

	if deleted {
		logger.Info(ctx, "work log deleted", "work_log_id", workLogID)
	} else {
		logger.Info(ctx, "work log already deleted", "work_log_id", workLogID)
	}
	return nil
}

// Update edits a work log. The total is recomputed from the stored unit
// price, never from the current rate.
func (s *Service) Update(ctx context.Context, workLogID id.ID, patch Patch) (*WorkLog, error) {
	if _, err := security.RequireActor(ctx); err != nil {
		return nil, err
	}

	var updated *WorkLog
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetForUpdate(ctx, workLogID)
		if err != nil {
			return err
		}
		if err := security.AuthorizeRecordMutation(ctx, "work_log", old.Owner()); err != nil {
			return err
		}

		w := *old
		patch.apply(&w)
		if err := w.Validate(ctx); err != nil {
			return err
		}
		w.Reprice()
		w.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, &w); err != nil {
			return fmt.Errorf("update work log: %w", err)
		}
		updated = &w
		return s.record(ctx, w.ID, audit.ActionUpdate, old, &w)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// List returns work logs newest work date first.
func (s *Service) List(ctx context.Context, filter Filter) ([]View, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultLimit
	case filter.Limit > MaxLimit:
		filter.Limit = MaxLimit
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) record(ctx context.Context, recordID id.ID, action audit.Action, oldData, newData any) error {
	if err := s.recorder.Record(ctx, audit.Entry{
		TableName: audit.TableWorkLogs,
		RecordID:  recordID,
		Action:    action,
		OldData:   oldData,
		NewData:   newData,
	}); err != nil {
		return fmt.Errorf("audit work log: %w", err)
	}
	return nil
}

func (p Patch) apply(w *WorkLog) {
	if p.Quantity != nil {
		w.Quantity = *p.Quantity
	}
	if p.ClearMaterial {
		w.MaterialID = nil
	} else if p.MaterialID != nil {
		materialID := *p.MaterialID
		w.MaterialID = &materialID
	}
	if p.Note != nil {
		w.Note = optionalNote(*p.Note)
	}
	if p.WorkDate != nil {
		w.WorkDate = *p.WorkDate
	}
}

func optionalNote(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
