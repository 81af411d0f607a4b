package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/krili-app/krili/internal/core/domain"
)

// UserRepo implements ports.UserRepository with pgx.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts an account.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, phone, address, university, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Phone, u.Address, u.University, u.IsVerified, u.CreatedAt)
	return err
}

const userColumns = `id, name, email, password_hash, role,
	COALESCE(phone, ''), COALESCE(address, ''), COALESCE(university, ''),
	is_verified, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Phone, &u.Address, &u.University,
		&u.IsVerified, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns an account by id, or nil if absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns an account by email, or nil if absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// List returns paginated accounts excluding one role, newest first.
func (r *UserRepo) List(ctx context.Context, excludeRole domain.Role, offset, limit int) ([]domain.User, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE role <> $1`, excludeRole).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role <> $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, excludeRole, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
			&u.Phone, &u.Address, &u.University,
			&u.IsVerified, &u.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// SetVerified flips the verification flag.
func (r *UserRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE users SET is_verified = $2 WHERE id = $1`, id, verified)
	return err
}
