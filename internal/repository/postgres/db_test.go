package postgres

import (
	"errors"
	"fmt"
	"testing"

	xerrors "adscreen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil, "op"))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows, "op"), xerrors.ErrNotFound)
	assert.ErrorIs(t, mapError(fmt.Errorf("wrapped: %w", pgx.ErrNoRows), "op"), xerrors.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505"}, "insert"), xerrors.ErrConflict)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23503"}, "insert"), xerrors.ErrInvalidInput)

	other := errors.New("connection reset")
	err := mapError(other, "select")
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, xerrors.ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("x: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestWhereBuilder(t *testing.T) {
	var w where
	assert.Equal(t, "TRUE", w.clause())

	w.add("merchant_id = $%d", int64(7))
	w.raw("deleted_at IS NULL")
	w.add("status = $%d", "approved")

	assert.Equal(t, "merchant_id = $1 AND deleted_at IS NULL AND status = $2", w.clause())
	assert.Equal(t, []any{int64(7), "approved"}, w.args)
	assert.Equal(t, 3, w.next())
}

func TestPaging(t *testing.T) {
	page, size, offset := normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
	assert.Equal(t, 0, offset)

	_, _, offset = normalizePage(3, 10)
	assert.Equal(t, 20, offset)

	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "b.id, b.status, b.created_at", prefixed("b", `
		id, status,
		created_at`))
}
