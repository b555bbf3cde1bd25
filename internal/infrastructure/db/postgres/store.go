package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

// maxTxAttempts is how often a transaction is run when it keeps losing
// serialization races.
const maxTxAttempts = 3

// Store implements ports.Store. A Store returned inside InTx is bound to the
// transaction; nested InTx calls join it.
type Store struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
	log  zerolog.Logger
}

func NewStore(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, db: pool, log: log}
}

var _ ports.Store = (*Store)(nil)

func (s *Store) Users() ports.UserRepository           { return &userRepository{db: s.db} }
func (s *Store) Workspaces() ports.WorkspaceRepository { return &workspaceRepository{db: s.db} }
func (s *Store) Managers() ports.ManagerRepository     { return &managerRepository{db: s.db} }
func (s *Store) Zones() ports.ZoneRepository           { return &zoneRepository{db: s.db} }
func (s *Store) Places() ports.PlaceRepository         { return &placeRepository{db: s.db} }
func (s *Store) Bookings() ports.BookingRepository     { return &bookingRepository{db: s.db} }

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// InTx runs fn in a transaction, retrying it when PostgreSQL aborts it with a
// serialization failure. When every attempt loses the race the caller gets a
// domain conflict.
func (s *Store) InTx(ctx context.Context, opts ports.TxOptions, fn func(ctx context.Context, tx ports.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if opts.Serializable {
		txOpts.IsoLevel = pgx.Serializable
	}

	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err := s.runTx(ctx, txOpts, fn)
		if !isSerializationFailure(err) {
			return err
		}
		s.log.Debug().Err(err).Int("attempt", attempt).Msg("transaction serialization failure, retrying")
	}
	return domain.Errorf(domain.ErrConflict, "concurrent update detected, please retry")
}

func (s *Store) runTx(ctx context.Context, txOpts pgx.TxOptions, fn func(ctx context.Context, tx ports.Store) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err = fn(ctx, &Store{pool: s.pool, db: tx, inTx: true, log: s.log}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}
