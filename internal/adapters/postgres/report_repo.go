package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/krili-app/krili/internal/core/domain"
)

// ReportRepo implements ports.ReportRepository with pgx.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new ReportRepo.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Create inserts a report.
func (r *ReportRepo) Create(ctx context.Context, rep *domain.Report) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO reports (id, reporter_id, listing_id, reason, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rep.ID, rep.ReporterID, rep.ListingID, rep.Reason, rep.Description, rep.Status, rep.CreatedAt)
	return err
}

// GetByID returns a report, or nil if absent.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	var rep domain.Report
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, reporter_id, listing_id, reason, COALESCE(description, ''), status, created_at
		FROM reports WHERE id = $1
	`, id).Scan(&rep.ID, &rep.ReporterID, &rep.ListingID, &rep.Reason, &rep.Description, &rep.Status, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListPending returns open reports with listing titles, oldest first.
func (r *ReportRepo) ListPending(ctx context.Context, offset, limit int) ([]domain.Report, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM reports WHERE status = 'pending'`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT r.id, r.reporter_id, r.listing_id, r.reason, COALESCE(r.description, ''),
		       r.status, r.created_at, l.title
		FROM reports r
		JOIN listings l ON l.id = r.listing_id
		WHERE r.status = 'pending'
		ORDER BY r.created_at ASC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		var rep domain.Report
		var listing domain.Listing
		if err := rows.Scan(
			&rep.ID, &rep.ReporterID, &rep.ListingID, &rep.Reason, &rep.Description,
			&rep.Status, &rep.CreatedAt, &listing.Title,
		); err != nil {
			return nil, 0, err
		}
		listing.ID = rep.ListingID
		rep.Listing = &listing
		out = append(out, rep)
	}
	return out, total, rows.Err()
}

// SetStatus closes or dismisses a report.
func (r *ReportRepo) SetStatus(ctx context.Context, id string, status domain.ReportStatus) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE reports SET status = $2 WHERE id = $1`, id, status)
	return err
}
