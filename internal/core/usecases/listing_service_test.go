package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/usecases"
)

func newProximity() *usecases.ProximityService {
	return usecases.NewProximityService(&mockUniversityRepo{}, 15)
}

func TestListingService_Create(t *testing.T) {
	var stored *domain.Listing
	listings := &mockListingRepo{
		createFn: func(ctx context.Context, l *domain.Listing) error {
			stored = l
			return nil
		},
	}
	events := &mockPublisher{}
	svc := usecases.NewListingService(listings, newMockCache(), events, newProximity())

	l := &domain.Listing{
		Title:    "Studio near ENIT",
		Price:    35,
		Location: domain.GeoPoint{Lat: 36.83, Lon: 10.15},
		Type:     domain.TypeStudio,
	}
	if err := svc.Create(context.Background(), l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID == "" {
		t.Error("expected a generated id")
	}
	if stored.Status != domain.ListingPending {
		t.Errorf("new listing must await moderation, got %s", stored.Status)
	}
	if len(events.listingEvents) != 1 {
		t.Errorf("expected one listing event, got %v", events.listingEvents)
	}
}

func TestListingService_Create_RejectsInvalidLocation(t *testing.T) {
	svc := usecases.NewListingService(&mockListingRepo{}, newMockCache(), nil, newProximity())

	l := &domain.Listing{Title: "Ghost flat", Price: 35, Location: domain.GeoPoint{}}
	if err := svc.Create(context.Background(), l); err == nil {
		t.Error("expected error for (0,0) location")
	}
}

func TestListingService_Update_ResetsToPending(t *testing.T) {
	var updated *domain.Listing
	listings := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			return &domain.Listing{ID: id, OwnerID: "owner-1", Status: domain.ListingApproved}, nil
		},
		updateFn: func(ctx context.Context, l *domain.Listing) error {
			updated = l
			return nil
		},
	}
	svc := usecases.NewListingService(listings, newMockCache(), nil, newProximity())

	l := &domain.Listing{ID: "l1", Title: "Edited", Price: 40, Location: domain.GeoPoint{Lat: 36.83, Lon: 10.15}}
	if err := svc.Update(context.Background(), "owner-1", l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.ListingPending {
		t.Errorf("edited listing must go back to moderation, got %s", updated.Status)
	}
}

func TestListingService_Update_NotOwner(t *testing.T) {
	listings := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			return &domain.Listing{ID: id, OwnerID: "owner-1"}, nil
		},
	}
	svc := usecases.NewListingService(listings, newMockCache(), nil, newProximity())

	l := &domain.Listing{ID: "l1", Location: domain.GeoPoint{Lat: 36.83, Lon: 10.15}}
	if err := svc.Update(context.Background(), "intruder", l); !errors.Is(err, usecases.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestListingService_Delete_AdminOverride(t *testing.T) {
	deleted := false
	listings := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			return &domain.Listing{ID: id, OwnerID: "owner-1"}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := usecases.NewListingService(listings, newMockCache(), nil, newProximity())

	if err := svc.Delete(context.Background(), "admin-1", true, "l1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("admin should be able to delete any listing")
	}
}

func TestListingService_GetByID_CachesResult(t *testing.T) {
	calls := 0
	listings := &mockListingRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Listing, error) {
			calls++
			return &domain.Listing{ID: id, Title: "Cached flat"}, nil
		},
	}
	svc := usecases.NewListingService(listings, newMockCache(), nil, newProximity())

	for i := 0; i < 3; i++ {
		if _, err := svc.GetByID(context.Background(), "l1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repository hit thanks to the cache, got %d", calls)
	}
}

func TestListingService_FindNearby_AnnotatesAndFilters(t *testing.T) {
	listings := &mockListingRepo{
		findNearbyFn: func(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]domain.Listing, error) {
			return []domain.Listing{
				{ID: "near", Location: domain.GeoPoint{Lat: 36.8100, Lon: 10.1900}, Status: domain.ListingApproved},
				{ID: "edge", Location: domain.GeoPoint{Lat: 36.8500, Lon: 10.3300}, Status: domain.ListingApproved},
				{ID: "bad", Location: domain.GeoPoint{}, Status: domain.ListingApproved},
			}, nil
		},
	}
	svc := usecases.NewListingService(listings, newMockCache(), nil, newProximity())

	out, ref, err := svc.FindNearby(context.Background(), "", &tunis, 10, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Source != domain.RefUserLocation {
		t.Errorf("expected user-location reference, got %s", ref.Source)
	}
	// "edge" is ~14.1 km out, past the 10 km radius; "bad" has no coordinates.
	if len(out) != 1 || out[0].ID != "near" {
		t.Fatalf("expected only 'near', got %+v", out)
	}
	if out[0].DistanceKm == nil || *out[0].DistanceKm <= 0 {
		t.Error("expected distance annotation on result")
	}
}

func TestListingService_FindNearby_NoReference(t *testing.T) {
	svc := usecases.NewListingService(&mockListingRepo{}, newMockCache(), nil, newProximity())

	if _, _, err := svc.FindNearby(context.Background(), "", nil, 10, 50); err == nil {
		t.Error("expected error without campus or user location")
	}
}
