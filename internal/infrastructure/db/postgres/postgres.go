// Package postgres implements the core storage ports on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// queryTimeout bounds every single statement.
const queryTimeout = 5 * time.Second

// PostgreSQL error codes the store reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeExclusionViolation   = "23P01"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// Constraint names referenced by mapError.
const (
	constraintUserEmail      = "users_email_key"
	constraintUserTelegram   = "users_telegram_id_key"
	constraintActiveManager  = "workspace_managers_active_idx"
	constraintBookingRange   = "bookings_time_range_check"
	constraintBookingOverlap = "bookings_no_overlap"
)

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	cfg.MinConns = 1
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = time.Hour
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// mapError translates driver errors into domain errors. notFound is returned
// for pgx.ErrNoRows. Serialization failures are wrapped, not translated, so
// the transaction runner can still recognise and retry them.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			switch pgErr.ConstraintName {
			case constraintUserEmail:
				return domain.ErrUserExists
			case constraintUserTelegram:
				return domain.ErrTelegramLinked
			case constraintActiveManager:
				return domain.ErrManagerExists
			}
			return domain.Errorf(domain.ErrAlreadyExists, "record already exists")
		case codeExclusionViolation:
			if pgErr.ConstraintName == constraintBookingOverlap {
				return domain.ErrBookingOverlap
			}
			return domain.Errorf(domain.ErrConflict, "conflicting record")
		case codeCheckViolation:
			if pgErr.ConstraintName == constraintBookingRange {
				return domain.ErrInvalidTimeRange
			}
			return domain.Errorf(domain.ErrInvalidArgument, "invalid field value")
		case codeForeignKeyViolation:
			return domain.Errorf(domain.ErrNotFound, "referenced row does not exist")
		}
	}
	return fmt.Errorf("postgres: %w", err)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// expectOne turns a zero-row write into notFound.
func expectOne(tag pgconn.CommandTag, err error, notFound error) error {
	if err != nil {
		return mapError(err, notFound)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

// conds accumulates AND-ed WHERE clauses with positional arguments.
type conds struct {
	clauses []string
	args    []any
}

// arg registers v and returns its placeholder.
func (c *conds) arg(v any) string {
	c.args = append(c.args, v)
	return "$" + strconv.Itoa(len(c.args))
}

func (c *conds) and(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conds) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET; a zero limit means no limit.
func (c *conds) page(offset, limit int) string {
	var b strings.Builder
	if limit > 0 {
		b.WriteString(" LIMIT " + c.arg(limit))
	}
	if offset > 0 {
		b.WriteString(" OFFSET " + c.arg(offset))
	}
	return b.String()
}

// prefixed qualifies every column of a column list with alias.
func prefixed(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
