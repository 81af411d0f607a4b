package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
)

// ListingRepo implements ports.ListingRepository with pgx and PostGIS.
type ListingRepo struct {
	db *DB
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(db *DB) *ListingRepo {
	return &ListingRepo{db: db}
}

const listingColumns = `l.id, l.owner_id, l.title, l.description, COALESCE(l.address, ''),
	ST_Y(l.location::geometry) as lat,
	ST_X(l.location::geometry) as lon,
	l.price, l.surface, l.rooms, l.bathrooms, l.type,
	l.is_furnished, l.has_kitchen, l.has_wifi, l.has_parking,
	l.status, l.available_from, l.created_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Address,
		&l.Location.Lat, &l.Location.Lon,
		&l.Price, &l.Surface, &l.Rooms, &l.Bathrooms, &l.Type,
		&l.IsFurnished, &l.HasKitchen, &l.HasWifi, &l.HasParking,
		&l.Status, &l.AvailableFrom, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a listing.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO listings (id, owner_id, title, description, address, location,
			price, surface, rooms, bathrooms, type,
			is_furnished, has_kitchen, has_wifi, has_parking,
			status, available_from, created_at)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography,
			$8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, l.ID, l.OwnerID, l.Title, l.Description, l.Address, l.Location.Lon, l.Location.Lat,
		l.Price, l.Surface, l.Rooms, l.Bathrooms, l.Type,
		l.IsFurnished, l.HasKitchen, l.HasWifi, l.HasParking,
		l.Status, l.AvailableFrom, l.CreatedAt)
	return err
}

// Update rewrites the mutable columns of a listing.
func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE listings
		SET title = $2, description = $3, address = $4,
		    location = ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography,
		    price = $7, surface = $8, rooms = $9, bathrooms = $10, type = $11,
		    is_furnished = $12, has_kitchen = $13, has_wifi = $14, has_parking = $15,
		    status = $16, available_from = $17
		WHERE id = $1
	`, l.ID, l.Title, l.Description, l.Address, l.Location.Lon, l.Location.Lat,
		l.Price, l.Surface, l.Rooms, l.Bathrooms, l.Type,
		l.IsFurnished, l.HasKitchen, l.HasWifi, l.HasParking,
		l.Status, l.AvailableFrom)
	return err
}

// Delete removes a listing. Photos cascade via FK.
func (r *ListingRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	return err
}

// GetByID returns a listing with its photos, or nil if absent.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := scanListing(r.db.Pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings l WHERE l.id = $1`, id))
	if err != nil || l == nil {
		return l, err
	}

	photos, err := r.photosFor(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Photos = photos
	return l, nil
}

// Search returns listings in the given status matching the filter, plus the
// total match count for pagination.
func (r *ListingRepo) Search(ctx context.Context, status domain.ListingStatus, filter ports.ListingFilter) ([]domain.Listing, int, error) {
	where := []string{"l.status = $1"}
	args := []any{status}

	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Type != "" {
		add("l.type = $%d", filter.Type)
	}
	if filter.MinPrice > 0 {
		add("l.price >= $%d", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		add("l.price <= $%d", filter.MaxPrice)
	}
	if filter.MinSurface > 0 {
		add("l.surface >= $%d", filter.MinSurface)
	}
	if filter.MaxSurface > 0 {
		add("l.surface <= $%d", filter.MaxSurface)
	}
	if filter.Rooms > 0 {
		add("l.rooms >= $%d", filter.Rooms)
	}
	if filter.IsFurnished {
		where = append(where, "l.is_furnished")
	}
	if filter.HasWifi {
		where = append(where, "l.has_wifi")
	}
	if filter.HasParking {
		where = append(where, "l.has_parking")
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM listings l WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Offset, filter.Limit)
	query := fmt.Sprintf(`
		SELECT `+listingColumns+`
		FROM listings l
		WHERE `+cond+`
		ORDER BY l.created_at DESC
		OFFSET $%d LIMIT $%d
	`, len(args)-1, len(args))

	listings, err := r.queryListings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ListByOwner returns every listing of an owner, newest first.
func (r *ListingRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	return r.queryListings(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		WHERE l.owner_id = $1
		ORDER BY l.created_at DESC
	`, ownerID)
}

// ListByStatus returns paginated listings in a status, oldest first so the
// moderation queue is FIFO.
func (r *ListingRepo) ListByStatus(ctx context.Context, status domain.ListingStatus, offset, limit int) ([]domain.Listing, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM listings WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	listings, err := r.queryListings(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		WHERE l.status = $1
		ORDER BY l.created_at ASC
		OFFSET $2 LIMIT $3
	`, status, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// SetStatus updates the moderation/rental state.
func (r *ListingRepo) SetStatus(ctx context.Context, id string, status domain.ListingStatus) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE listings SET status = $2 WHERE id = $1`, id, status)
	return err
}

// FindNearby returns approved listings within radiusKm using ST_DWithin,
// nearest first. The database pre-filters; exact annotation happens upstream.
func (r *ListingRepo) FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Listing, error) {
	return r.queryListings(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		WHERE l.status = 'approved'
		  AND ST_DWithin(l.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY ST_Distance(l.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
		LIMIT $4
	`, lon, lat, radiusKm*1000, limit)
}

// AddPhotos attaches photo rows to a listing using pgx.Batch.
func (r *ListingRepo) AddPhotos(ctx context.Context, listingID string, photos []domain.ListingPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range photos {
		batch.Queue(`
			INSERT INTO listing_photos (id, listing_id, path, is_main)
			VALUES ($1, $2, $3, $4)
		`, p.ID, listingID, p.Path, p.IsMain)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range photos {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

func (r *ListingRepo) queryListings(ctx context.Context, query string, args ...any) ([]domain.Listing, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Address,
			&l.Location.Lat, &l.Location.Lon,
			&l.Price, &l.Surface, &l.Rooms, &l.Bathrooms, &l.Type,
			&l.IsFurnished, &l.HasKitchen, &l.HasWifi, &l.HasParking,
			&l.Status, &l.AvailableFrom, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ListingRepo) photosFor(ctx context.Context, listingID string) ([]domain.ListingPhoto, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, listing_id, path, is_main
		FROM listing_photos
		WHERE listing_id = $1
		ORDER BY is_main DESC, id
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.ListingPhoto
	for rows.Next() {
		var p domain.ListingPhoto
		if err := rows.Scan(&p.ID, &p.ListingID, &p.Path, &p.IsMain); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
