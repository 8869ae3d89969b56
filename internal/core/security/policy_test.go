package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalstock/internal/core/apperror"
	appctx "metalstock/internal/core/context"
)

const (
	operatorID = "0190a000-0000-7000-8000-0000000000aa"
	otherID    = "0190a000-0000-7000-8000-0000000000bb"
)

func operator() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: operatorID, Role: appctx.RoleOperator})
}

func admin() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: otherID, Role: appctx.RoleAdmin})
}

func TestRequireActor(t *testing.T) {
	_, err := RequireActor(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeUnauthorized, mustApp(t, err).Code)

	user, err := RequireActor(operator())
	require.NoError(t, err)
	assert.Equal(t, operatorID, user.UserID)
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(admin()))
	assert.True(t, apperror.IsForbidden(RequireAdmin(operator())))
	assert.Equal(t, apperror.CodeUnauthorized, mustApp(t, RequireAdmin(context.Background())).Code)
}

func TestAuthorizeRecordMutation(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		createdBy string
		wantCode  string
	}{
		{name: "operator owns record", ctx: operator(), createdBy: operatorID},
		{name: "operator foreign record", ctx: operator(), createdBy: otherID, wantCode: apperror.CodeForbidden},
		{name: "operator record without owner", ctx: operator(), createdBy: "", wantCode: apperror.CodeForbidden},
		{name: "admin any record", ctx: admin(), createdBy: operatorID},
		{name: "admin record without owner", ctx: admin(), createdBy: ""},
		{name: "anonymous", ctx: context.Background(), createdBy: operatorID, wantCode: apperror.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeRecordMutation(tt.ctx, "movement", tt.createdBy)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantCode, mustApp(t, err).Code)
		})
	}
}

func mustApp(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	app, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return app
}
