package postgres

import (
	"context"

	"github.com/krili-app/krili/internal/core/domain"
)

// StatsRepo implements ports.StatsRepository with pgx.
type StatsRepo struct {
	db *DB
}

// NewStatsRepo creates a new StatsRepo.
func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// AdminStats returns the dashboard counters in one round trip.
func (r *StatsRepo) AdminStats(ctx context.Context) (*domain.AdminStats, error) {
	var s domain.AdminStats
	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM users WHERE role <> 'admin'),
			(SELECT count(*) FROM listings),
			(SELECT count(*) FROM listings WHERE status = 'pending'),
			(SELECT count(*) FROM reservations),
			(SELECT count(*) FROM reports WHERE status = 'pending')
	`).Scan(&s.TotalUsers, &s.TotalListings, &s.PendingListings, &s.TotalReservations, &s.PendingReports)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
