package ledger

import (
	"context"
	"fmt"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/tx"
	"metalstock/internal/domain/audit"
	"metalstock/pkg/logger"
)

// DefaultResolveAttempts bounds lookup/insert rounds before giving up.
const DefaultResolveAttempts = 3

// Resolver finds the position for a key or creates it with a zero balance.
// Concurrent callers resolving the same new key all get the same row: the
// storage unique index decides the winner and losers re-read it.
type Resolver struct {
	repo        PositionRepository
	txManager   tx.SavepointManager
	recorder    audit.Recorder
	metrics     Metrics
	maxAttempts int
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithMaxAttempts overrides DefaultResolveAttempts.
func WithMaxAttempts(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithResolverMetrics sets the metrics sink.
func WithResolverMetrics(m Metrics) ResolverOption {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewResolver creates a position resolver.
func NewResolver(repo PositionRepository, txManager tx.SavepointManager, recorder audit.Recorder, opts ...ResolverOption) *Resolver {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	r := &Resolver{
		repo:        repo,
		txManager:   txManager,
		recorder:    recorder,
		metrics:     nopMetrics{},
		maxAttempts: DefaultResolveAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveOrCreate returns the position for key, creating it when absent.
// Safe inside an outer transaction: the insert runs in a savepoint so a
// unique violation does not abort the caller's work.
func (r *Resolver) ResolveOrCreate(ctx context.Context, key Key) (*Position, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		existing, err := r.repo.FindByKey(ctx, key)
		if err == nil {
			r.metrics.PositionResolved(OutcomeFound)
			return existing, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, fmt.Errorf("find position: %w", err)
		}

		candidate := NewPosition(key)
		var created bool
		err = r.txManager.RunInSavepoint(ctx, func(ctx context.Context) error {
			ok, err := r.repo.InsertIfAbsent(ctx, candidate)
			if err != nil {
				return err
			}
			created = ok
			if !ok {
				return nil
			}
			return r.recorder.Record(ctx, audit.Entry{
				TableName: audit.TablePositions,
				RecordID:  candidate.ID,
				Action:    audit.ActionInsert,
				NewData:   candidate,
			})
		})

		switch {
		case err == nil && created:
			r.metrics.PositionResolved(OutcomeCreated)
			logger.Info(ctx, "position created",
				"position_id", candidate.ID,
				"company_id", key.CompanyID,
				"material_id", key.MaterialID,
				"size", key.Size,
				"ownership", key.Ownership,
			)
			return candidate, nil
		case err == nil, apperror.IsDuplicate(err):
			// Lost the insert race; the winner's row is visible to the next lookup.
			r.metrics.PositionResolved(OutcomeConflictRetry)
			logger.Debug(ctx, "position insert conflict, retrying lookup",
				"attempt", attempt,
				"size", key.Size,
			)
		default:
			return nil, fmt.Errorf("insert position: %w", err)
		}
	}

	return nil, apperror.NewTransient(
		fmt.Errorf("position not resolved after %d attempts", r.maxAttempts),
	)
}
