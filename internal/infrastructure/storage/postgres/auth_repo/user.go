// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"

	"metalstock/internal/core/apperror"
	"metalstock/internal/core/id"
	"metalstock/internal/domain/auth"
	"metalstock/internal/infrastructure/storage/postgres"
)

const userColumns = `id, email, name, role, password_hash, is_active,
	last_login_at, failed_login_attempts, locked_until, created_at, updated_at`

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{txManager: txManager}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO users (
			id, email, name, role, password_hash, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		user.ID, strings.ToLower(user.Email), user.Name, user.Role, user.PasswordHash,
		user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return postgres.ClassifyError(fmt.Errorf("insert user: %w", err))
	}

	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	var user auth.User
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if pgxscan.NotFound(err) {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("query user: %w", err))
	}

	return &user, nil
}

// GetByEmail retrieves user by email, case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var user auth.User
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if pgxscan.NotFound(err) {
		return nil, apperror.NewNotFound("user", email)
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("query user: %w", err))
	}

	return &user, nil
}

// Update updates profile and login bookkeeping.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	query := `
		UPDATE users SET
			name = $2,
			role = $3,
			password_hash = $4,
			is_active = $5,
			last_login_at = $6,
			failed_login_attempts = $7,
			locked_until = $8,
			updated_at = now()
		WHERE id = $1
	`

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, query,
		user.ID, user.Name, user.Role, user.PasswordHash, user.IsActive,
		user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
	)
	if err != nil {
		return postgres.ClassifyError(fmt.Errorf("update user: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID.String())
	}

	return nil
}

// Ensure interface compliance
var _ auth.UserRepository = (*UserRepo)(nil)
