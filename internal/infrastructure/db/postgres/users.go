package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spacehub/coworking-api/internal/core/domain"
	"github.com/spacehub/coworking-api/internal/core/ports"
)

type userRepository struct {
	db querier
}

const userCols = `id, email, password_hash, first_name, middle_name, last_name, phone,
role_id, is_banned, reason_banned, telegram_id, telegram_username, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u      domain.User
		roleID int64
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.MiddleName, &u.LastName, &u.Phone,
		&roleID, &u.Banned, &u.ReasonBanned, &u.TelegramID, &u.TelegramUsername, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role, _ = domain.RoleByID(roleID)
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `INSERT INTO users (
		email, password_hash, first_name, middle_name, last_name, phone,
		role_id, is_banned, reason_banned, telegram_id, telegram_username, created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	RETURNING id`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(ctx, q,
		u.Email, u.PasswordHash, u.FirstName, u.MiddleName, u.LastName, u.Phone,
		u.Role.ID(), u.Banned, u.ReasonBanned, u.TelegramID, u.TelegramUsername, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	return mapError(err, domain.ErrUserNotFound)
}

func (r *userRepository) get(ctx context.Context, where string, arg any) (*domain.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE `+where, arg))
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, "email = $1", email)
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	return r.get(ctx, "telegram_id = $1", telegramID)
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	const q = `UPDATE users SET
		email = $2, password_hash = $3, first_name = $4, middle_name = $5, last_name = $6, phone = $7,
		role_id = $8, is_banned = $9, reason_banned = $10, telegram_id = $11, telegram_username = $12,
		updated_at = $13
	WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, q, u.ID,
		u.Email, u.PasswordHash, u.FirstName, u.MiddleName, u.LastName, u.Phone,
		u.Role.ID(), u.Banned, u.ReasonBanned, u.TelegramID, u.TelegramUsername, u.UpdatedAt,
	)
	return expectOne(tag, err, domain.ErrUserNotFound)
}

func (r *userRepository) List(ctx context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	var c conds
	if f.Query != "" {
		p := c.arg("%" + f.Query + "%")
		c.and("(email ILIKE " + p + " OR first_name ILIKE " + p + " OR middle_name ILIKE " + p + " OR last_name ILIKE " + p + ")")
	}
	if f.Role != "" {
		c.and("role_id = " + c.arg(f.Role.ID()))
	}
	if f.Banned != nil {
		c.and("is_banned = " + c.arg(*f.Banned))
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, mapError(err, domain.ErrUserNotFound)
	}

	q := `SELECT ` + userCols + ` FROM users` + c.where() + ` ORDER BY id`
	q += c.page(f.Offset, f.Limit)
	rows, err := r.db.Query(ctx, q, c.args...)
	if err != nil {
		return nil, 0, mapError(err, domain.ErrUserNotFound)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapError(err, domain.ErrUserNotFound)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, domain.ErrUserNotFound)
	}
	return users, total, nil
}
