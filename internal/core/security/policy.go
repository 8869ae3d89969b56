// Package security provides authorization policies evaluated against the
// request principal before any storage mutation is attempted.
package security

import (
	"context"

	"metalstock/internal/core/apperror"
	appctx "metalstock/internal/core/context"
)

// RequireActor returns the authenticated principal or an Unauthorized error.
func RequireActor(ctx context.Context) (*appctx.UserContext, error) {
	user := appctx.GetUser(ctx)
	if user == nil || user.UserID == "" {
		return nil, apperror.NewUnauthorized("authentication required")
	}
	return user, nil
}

// RequireAdmin rejects non-admin principals.
func RequireAdmin(ctx context.Context) error {
	user, err := RequireActor(ctx)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return apperror.NewForbidden("admin role required").
			WithDetail("role", user.Role)
	}
	return nil
}

// CanMutateRecord applies the ownership rule for ledger and work log records:
// admins may change any record, operators only the ones they created.
func CanMutateRecord(user *appctx.UserContext, createdBy string) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return createdBy != "" && createdBy == user.UserID
}

// AuthorizeRecordMutation is CanMutateRecord with an AppError result.
func AuthorizeRecordMutation(ctx context.Context, entity string, createdBy string) error {
	user, err := RequireActor(ctx)
	if err != nil {
		return err
	}
	if !CanMutateRecord(user, createdBy) {
		return apperror.NewForbidden("operators may only change their own records").
			WithDetail("entity", entity)
	}
	return nil
}
