package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrZoneNotFound},
		{"duplicate email", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintUserEmail}, domain.ErrUserExists},
		{"duplicate telegram", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintUserTelegram}, domain.ErrTelegramLinked},
		{"duplicate manager", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintActiveManager}, domain.ErrManagerExists},
		{"overlap", &pgconn.PgError{Code: codeExclusionViolation, ConstraintName: constraintBookingOverlap}, domain.ErrBookingOverlap},
		{"time range", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: constraintBookingRange}, domain.ErrInvalidTimeRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mapError(tc.err, domain.ErrZoneNotFound))
		})
	}
}

func TestMapError_Kinds(t *testing.T) {
	assert.NoError(t, mapError(nil, domain.ErrZoneNotFound))

	err := mapError(&pgconn.PgError{Code: codeUniqueViolation, TableName: "places"}, nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	err = mapError(&pgconn.PgError{Code: codeForeignKeyViolation}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = mapError(&pgconn.PgError{Code: codeExclusionViolation, ConstraintName: "other"}, nil)
	assert.ErrorIs(t, err, domain.ErrConflict)

	raw := errors.New("connection reset")
	err = mapError(raw, nil)
	assert.ErrorIs(t, err, raw)
	assert.Equal(t, domain.ErrInternal, domain.KindOf(err))
}

func TestMapError_HidesStorageDetails(t *testing.T) {
	pgErr := func(code string) *pgconn.PgError {
		return &pgconn.PgError{
			Code:           code,
			TableName:      "workspace_zones",
			ConstraintName: "workspace_zones_secret_idx",
			Detail:         "Key (name)=(Quiet) already exists.",
		}
	}
	for _, code := range []string{codeUniqueViolation, codeExclusionViolation, codeCheckViolation, codeForeignKeyViolation} {
		t.Run(code, func(t *testing.T) {
			err := mapError(pgErr(code), nil)
			var de *domain.Error
			require.True(t, errors.As(err, &de))
			assert.NotContains(t, de.Message, "workspace_zones")
			assert.NotContains(t, de.Message, "Quiet")
		})
	}
}

func TestIsSerializationFailure(t *testing.T) {
	serialization := &pgconn.PgError{Code: codeSerializationFailure}

	assert.True(t, isSerializationFailure(serialization))
	assert.True(t, isSerializationFailure(&pgconn.PgError{Code: codeDeadlockDetected}))
	// mapError must not hide it from the transaction runner.
	assert.True(t, isSerializationFailure(mapError(serialization, nil)))
	assert.True(t, isSerializationFailure(fmt.Errorf("create booking: %w", serialization)))

	assert.False(t, isSerializationFailure(nil))
	assert.False(t, isSerializationFailure(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isSerializationFailure(domain.ErrConflict))
}

func TestConds(t *testing.T) {
	var c conds
	assert.Empty(t, c.where())

	c.and("a = " + c.arg(1))
	c.and("b ILIKE " + c.arg("%x%"))
	page := c.page(20, 10)

	assert.Equal(t, " WHERE a = $1 AND b ILIKE $2", c.where())
	assert.Equal(t, " LIMIT $3 OFFSET $4", page)
	require.Len(t, c.args, 4)
	assert.Equal(t, []any{1, "%x%", 10, 20}, c.args)
}

func TestConds_PageWithoutLimit(t *testing.T) {
	var c conds
	assert.Empty(t, c.page(0, 0))
	assert.Equal(t, " OFFSET $1", c.page(5, 0))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "b.id, b.place_id, b.status", prefixed("b", "id, place_id,\nstatus"))
}
