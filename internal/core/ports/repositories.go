package ports

import (
	"context"
	"time"

	"github.com/krili-app/krili/internal/core/domain"
)

// ListingFilter narrows a listing search; zero values mean "no constraint".
type ListingFilter struct {
	Type        domain.ListingType
	MinPrice    float64
	MaxPrice    float64
	MinSurface  int
	MaxSurface  int
	Rooms       int
	IsFurnished bool
	HasWifi     bool
	HasParking  bool
	Offset      int
	Limit       int
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, excludeRole domain.Role, offset, limit int) ([]domain.User, int, error)
	SetVerified(ctx context.Context, id string, verified bool) error
}

// UniversityRepository exposes the static campus catalog.
type UniversityRepository interface {
	List(ctx context.Context) ([]domain.University, error)
	GetByID(ctx context.Context, id string) (*domain.University, error)
}

// ListingRepository persists rental listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	Update(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	Search(ctx context.Context, status domain.ListingStatus, filter ListingFilter) ([]domain.Listing, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error)
	ListByStatus(ctx context.Context, status domain.ListingStatus, offset, limit int) ([]domain.Listing, int, error)
	SetStatus(ctx context.Context, id string, status domain.ListingStatus) error
	FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Listing, error)
	AddPhotos(ctx context.Context, listingID string, photos []domain.ListingPhoto) error
}

// ReservationRepository persists bookings.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	ListByTenant(ctx context.Context, tenantID string, offset, limit int) ([]domain.Reservation, int, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.Reservation, int, error)
	SetStatus(ctx context.Context, id string, status domain.ReservationStatus) error
	// HasOverlap reports whether a confirmed reservation overlaps [start, end]
	// for the listing.
	HasOverlap(ctx context.Context, listingID string, start, end time.Time) (bool, error)
}

// ReportRepository persists listing reports.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	ListPending(ctx context.Context, offset, limit int) ([]domain.Report, int, error)
	SetStatus(ctx context.Context, id string, status domain.ReportStatus) error
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
}

// StatsRepository aggregates counters for the admin dashboard.
type StatsRepository interface {
	AdminStats(ctx context.Context) (*domain.AdminStats, error)
}
