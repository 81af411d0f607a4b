package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/krili-app/krili/internal/core/domain"
)

// ReservationRepo implements ports.ReservationRepository with pgx.
type ReservationRepo struct {
	db *DB
}

// NewReservationRepo creates a new ReservationRepo.
func NewReservationRepo(db *DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// Create inserts a reservation.
func (r *ReservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO reservations (id, tenant_id, listing_id, start_date, end_date,
			total_price, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, res.ID, res.TenantID, res.ListingID, res.StartDate, res.EndDate,
		res.TotalPrice, res.Status, res.Message, res.CreatedAt)
	return err
}

// GetByID returns a reservation, or nil if absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, tenant_id, listing_id, start_date, end_date,
		       total_price, status, COALESCE(message, ''), created_at
		FROM reservations WHERE id = $1
	`, id).Scan(
		&res.ID, &res.TenantID, &res.ListingID, &res.StartDate, &res.EndDate,
		&res.TotalPrice, &res.Status, &res.Message, &res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListByTenant returns the tenant's reservations with listing summaries,
// newest first.
func (r *ReservationRepo) ListByTenant(ctx context.Context, tenantID string, offset, limit int) ([]domain.Reservation, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM reservations WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT r.id, r.tenant_id, r.listing_id, r.start_date, r.end_date,
		       r.total_price, r.status, COALESCE(r.message, ''), r.created_at,
		       l.title, l.price,
		       ST_Y(l.location::geometry), ST_X(l.location::geometry)
		FROM reservations r
		JOIN listings l ON l.id = r.listing_id
		WHERE r.tenant_id = $1
		ORDER BY r.created_at DESC
		OFFSET $2 LIMIT $3
	`, tenantID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := scanReservationsWithListing(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByOwner returns reservations on the owner's listings with tenant names,
// newest first.
func (r *ReservationRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.Reservation, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*)
		FROM reservations r JOIN listings l ON l.id = r.listing_id
		WHERE l.owner_id = $1
	`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT r.id, r.tenant_id, r.listing_id, r.start_date, r.end_date,
		       r.total_price, r.status, COALESCE(r.message, ''), r.created_at,
		       l.title, l.price,
		       ST_Y(l.location::geometry), ST_X(l.location::geometry),
		       u.name, u.email
		FROM reservations r
		JOIN listings l ON l.id = r.listing_id
		JOIN users u ON u.id = r.tenant_id
		WHERE l.owner_id = $1
		ORDER BY r.created_at DESC
		OFFSET $2 LIMIT $3
	`, ownerID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		var listing domain.Listing
		var tenant domain.User
		if err := rows.Scan(
			&res.ID, &res.TenantID, &res.ListingID, &res.StartDate, &res.EndDate,
			&res.TotalPrice, &res.Status, &res.Message, &res.CreatedAt,
			&listing.Title, &listing.Price,
			&listing.Location.Lat, &listing.Location.Lon,
			&tenant.Name, &tenant.Email,
		); err != nil {
			return nil, 0, err
		}
		listing.ID = res.ListingID
		tenant.ID = res.TenantID
		res.Listing = &listing
		res.Tenant = &tenant
		out = append(out, res)
	}
	return out, total, rows.Err()
}

// SetStatus updates the lifecycle state.
func (r *ReservationRepo) SetStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE reservations SET status = $2 WHERE id = $1`, id, status)
	return err
}

// HasOverlap reports whether a confirmed reservation overlaps [start, end]
// for the listing. Two ranges overlap when each starts before the other ends.
func (r *ReservationRepo) HasOverlap(ctx context.Context, listingID string, start, end time.Time) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE listing_id = $1
			  AND status = 'confirmed'
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`, listingID, start, end).Scan(&exists)
	return exists, err
}

func scanReservationsWithListing(rows pgx.Rows) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		var listing domain.Listing
		if err := rows.Scan(
			&res.ID, &res.TenantID, &res.ListingID, &res.StartDate, &res.EndDate,
			&res.TotalPrice, &res.Status, &res.Message, &res.CreatedAt,
			&listing.Title, &listing.Price,
			&listing.Location.Lat, &listing.Location.Lon,
		); err != nil {
			return nil, err
		}
		listing.ID = res.ListingID
		res.Listing = &listing
		out = append(out, res)
	}
	return out, rows.Err()
}
