package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"domain error passes through", NewForbidden("nope"), CodeForbidden, http.StatusForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewConflict("dup", nil)), CodeConflict, http.StatusConflict},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, CodeConflict, http.StatusConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, CodeConflict, http.StatusConflict},
		{"value too long", &pgconn.PgError{Code: "22001"}, CodeValidation, http.StatusBadRequest},
		{"fiber error", fiber.NewError(http.StatusNotFound, "Cannot GET /nope"), CodeNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
		})
	}
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	de := ToDomainError(errors.New("pq: relation usuarios does not exist"))
	assert.Equal(t, "internal server error", de.Message)
	assert.ErrorContains(t, de.Unwrap(), "relation usuarios")
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewValidationError("bad", nil), CodeValidation))
	assert.False(t, HasCode(NewValidationError("bad", nil), CodeNotFound))
	assert.False(t, HasCode(nil, CodeValidation))
}

func TestPgViolationHelpers(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsForeignKeyViolation(wrapped))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}
