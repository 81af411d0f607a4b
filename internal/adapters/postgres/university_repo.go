package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/krili-app/krili/internal/core/domain"
)

// UniversityRepo implements ports.UniversityRepository with pgx. The catalog
// is seeded by migrations and read-only at runtime.
type UniversityRepo struct {
	db *DB
}

// NewUniversityRepo creates a new UniversityRepo.
func NewUniversityRepo(db *DB) *UniversityRepo {
	return &UniversityRepo{db: db}
}

// List returns all universities ordered by name.
func (r *UniversityRepo) List(ctx context.Context) ([]domain.University, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       COALESCE(address, '')
		FROM universities
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.University
	for rows.Next() {
		var u domain.University
		if err := rows.Scan(&u.ID, &u.Name, &u.Location.Lat, &u.Location.Lon, &u.Address); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID returns a single university, or nil if absent.
func (r *UniversityRepo) GetByID(ctx context.Context, id string) (*domain.University, error) {
	var u domain.University
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       COALESCE(address, '')
		FROM universities WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Location.Lat, &u.Location.Lon, &u.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
