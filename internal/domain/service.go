package domain

import (
	"context"
	"fmt"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/core/security"
	"metalstock/internal/core/tx"
	"metalstock/internal/domain/audit"
	"metalstock/pkg/logger"
)

// CatalogService provides business logic for catalog entities.
// Any authenticated user may create entries; update, delete and activation
// changes are reserved for admins.
type CatalogService[T CatalogEntity] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	recorder  audit.Recorder
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
	// tableName for audit entries
	tableName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T CatalogEntity] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	Recorder   audit.Recorder // Optional: NopRecorder when nil
	EntityName string
	TableName  string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T CatalogEntity](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		recorder:   recorder,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
		tableName:  cfg.TableName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	// If entity already returns structured AppError, keep it.
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID.String())
}

func (s *CatalogService[T]) record(ctx context.Context, action audit.Action, recordID id.ID, oldData, newData any) error {
	if err := s.recorder.Record(ctx, audit.Entry{
		TableName: s.tableName,
		RecordID:  recordID,
		Action:    action,
		OldData:   oldData,
		NewData:   newData,
	}); err != nil {
		return fmt.Errorf("audit %s: %w", s.entityName, err)
	}
	return nil
}

// Create creates a new catalog entity.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	if _, err := security.RequireActor(ctx); err != nil {
		return err
	}

	// 1. Validate entity invariants
	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	// 2. Run before-create hooks
	if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
		return err
	}

	// 3. Create and audit in one transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return s.record(ctx, audit.ActionInsert, entity.GetID(), nil, entity)
	})
	if err != nil {
		return err
	}

	// 4. Run after-create hooks (outside transaction)
	if err := s.hooks.Run(ctx, AfterCreate, entity); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID)
	}
	return entity, nil
}

// Update updates an existing entity. The entity's Version must match storage.
func (s *CatalogService[T]) Update(ctx context.Context, entity T) error {
	if err := security.RequireAdmin(ctx); err != nil {
		return err
	}

	if err := entity.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeUpdate, entity); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetByID(ctx, entity.GetID())
		if err != nil {
			return s.normalizeGetErr(err, entity.GetID())
		}
		if err := s.repo.Update(ctx, entity); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return s.record(ctx, audit.ActionUpdate, entity.GetID(), old, entity)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterUpdate, entity); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// Delete removes the entity. Entries still referenced by positions or work
// logs are rejected with a Conflict; deactivate those instead.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	if err := security.RequireAdmin(ctx); err != nil {
		return err
	}

	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID)
	}

	if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return s.record(ctx, audit.ActionDelete, entityID, entity, nil)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterDelete, entity); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// SetActive activates or deactivates the entry.
func (s *CatalogService[T]) SetActive(ctx context.Context, entityID id.ID, active bool) (T, error) {
	var updated T
	if err := security.RequireAdmin(ctx); err != nil {
		return updated, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return s.normalizeGetErr(err, entityID)
		}
		if err := s.repo.SetActive(ctx, entityID, active); err != nil {
			return fmt.Errorf("set active %s: %w", s.entityName, err)
		}
		updated, err = s.repo.GetByID(ctx, entityID)
		if err != nil {
			return s.normalizeGetErr(err, entityID)
		}
		return s.record(ctx, audit.ActionUpdate, entityID, old, updated)
	})
	return updated, err
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks if entity exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}
