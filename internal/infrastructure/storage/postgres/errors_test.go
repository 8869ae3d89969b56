package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"metalstock/internal/core/apperror"
)

func TestClassifyError(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, TableName: "positions", ConstraintName: "positions_key"})
	}

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"unique violation", wrap("23505"), apperror.IsDuplicate},
		{"foreign key violation", wrap("23503"), apperror.IsConflict},
		{"check violation", wrap("23514"), apperror.IsValidation},
		{"serialization failure", wrap("40001"), apperror.IsTransient},
		{"deadlock", wrap("40P01"), apperror.IsTransient},
		{"statement timeout", wrap("57014"), apperror.IsTransient},
		{"connection failure", wrap("08006"), apperror.IsTransient},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), apperror.IsTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(ClassifyError(tt.err)))
		})
	}
}

func TestClassifyError_PassThrough(t *testing.T) {
	assert.NoError(t, ClassifyError(nil))

	appErr := apperror.NewNotFound("movements", "x")
	assert.Same(t, appErr, ClassifyError(appErr))

	plain := errors.New("syntax")
	assert.Equal(t, plain, ClassifyError(plain))

	syntax := &pgconn.PgError{Code: "42601"}
	assert.Equal(t, error(syntax), ClassifyError(syntax))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("x: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
}
