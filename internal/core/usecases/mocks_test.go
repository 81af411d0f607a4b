package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
)

// Shared mock implementations for usecase tests. Each mock delegates to an
// optional fn field so tests only stub what they use.

type mockListingRepo struct {
	createFn       func(ctx context.Context, l *domain.Listing) error
	updateFn       func(ctx context.Context, l *domain.Listing) error
	deleteFn       func(ctx context.Context, id string) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Listing, error)
	searchFn       func(ctx context.Context, status domain.ListingStatus, f ports.ListingFilter) ([]domain.Listing, int, error)
	listByOwnerFn  func(ctx context.Context, ownerID string) ([]domain.Listing, error)
	listByStatusFn func(ctx context.Context, status domain.ListingStatus, offset, limit int) ([]domain.Listing, int, error)
	setStatusFn    func(ctx context.Context, id string, status domain.ListingStatus) error
	findNearbyFn   func(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Listing, error)
	addPhotosFn    func(ctx context.Context, listingID string, photos []domain.ListingPhoto) error
}

func (m *mockListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	if m.createFn != nil {
		return m.createFn(ctx, l)
	}
	return nil
}

func (m *mockListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, l)
	}
	return nil
}

func (m *mockListingRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockListingRepo) Search(ctx context.Context, status domain.ListingStatus, f ports.ListingFilter) ([]domain.Listing, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, status, f)
	}
	return nil, 0, nil
}

func (m *mockListingRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockListingRepo) ListByStatus(ctx context.Context, status domain.ListingStatus, offset, limit int) ([]domain.Listing, int, error) {
	if m.listByStatusFn != nil {
		return m.listByStatusFn(ctx, status, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockListingRepo) SetStatus(ctx context.Context, id string, status domain.ListingStatus) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockListingRepo) FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Listing, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radiusKm, limit)
	}
	return nil, nil
}

func (m *mockListingRepo) AddPhotos(ctx context.Context, listingID string, photos []domain.ListingPhoto) error {
	if m.addPhotosFn != nil {
		return m.addPhotosFn(ctx, listingID, photos)
	}
	return nil
}

type mockReservationRepo struct {
	createFn       func(ctx context.Context, r *domain.Reservation) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Reservation, error)
	listByTenantFn func(ctx context.Context, tenantID string, offset, limit int) ([]domain.Reservation, int, error)
	listByOwnerFn  func(ctx context.Context, ownerID string, offset, limit int) ([]domain.Reservation, int, error)
	setStatusFn    func(ctx context.Context, id string, status domain.ReservationStatus) error
	hasOverlapFn   func(ctx context.Context, listingID string, start, end time.Time) (bool, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, r *domain.Reservation) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	return nil
}

func (m *mockReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockReservationRepo) ListByTenant(ctx context.Context, tenantID string, offset, limit int) ([]domain.Reservation, int, error) {
	if m.listByTenantFn != nil {
		return m.listByTenantFn(ctx, tenantID, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockReservationRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.Reservation, int, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockReservationRepo) SetStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockReservationRepo) HasOverlap(ctx context.Context, listingID string, start, end time.Time) (bool, error) {
	if m.hasOverlapFn != nil {
		return m.hasOverlapFn(ctx, listingID, start, end)
	}
	return false, nil
}

type mockUserRepo struct {
	createFn      func(ctx context.Context, u *domain.User) error
	getByIDFn     func(ctx context.Context, id string) (*domain.User, error)
	getByEmailFn  func(ctx context.Context, email string) (*domain.User, error)
	listFn        func(ctx context.Context, excludeRole domain.Role, offset, limit int) ([]domain.User, int, error)
	setVerifiedFn func(ctx context.Context, id string, verified bool) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, excludeRole domain.Role, offset, limit int) ([]domain.User, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, excludeRole, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockUserRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	if m.setVerifiedFn != nil {
		return m.setVerifiedFn(ctx, id, verified)
	}
	return nil
}

type mockReportRepo struct {
	createFn      func(ctx context.Context, r *domain.Report) error
	getByIDFn     func(ctx context.Context, id string) (*domain.Report, error)
	listPendingFn func(ctx context.Context, offset, limit int) ([]domain.Report, int, error)
	setStatusFn   func(ctx context.Context, id string, status domain.ReportStatus) error
}

func (m *mockReportRepo) Create(ctx context.Context, r *domain.Report) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockReportRepo) ListPending(ctx context.Context, offset, limit int) ([]domain.Report, int, error) {
	if m.listPendingFn != nil {
		return m.listPendingFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockReportRepo) SetStatus(ctx context.Context, id string, status domain.ReportStatus) error {
	if m.setStatusFn != nil {
		return m.setStatusFn(ctx, id, status)
	}
	return nil
}

// mockPublisher records events for assertions.
type mockPublisher struct {
	mu            sync.Mutex
	notifications []domain.Notification
	listingEvents []string
}

func (m *mockPublisher) PublishNotification(ctx context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *mockPublisher) PublishListingEvent(ctx context.Context, event string, listingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listingEvents = append(m.listingEvents, event+":"+listingID)
	return nil
}

var errMiss = errors.New("cache miss")

// mockCache is an in-memory CacheService.
type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
