package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
)

// ListingService handles listing-related business logic.
type ListingService struct {
	listings  ports.ListingRepository
	cache     ports.CacheService
	events    ports.EventPublisher
	proximity *ProximityService
}

// NewListingService creates a new ListingService.
func NewListingService(listings ports.ListingRepository, cache ports.CacheService, events ports.EventPublisher, proximity *ProximityService) *ListingService {
	return &ListingService{listings: listings, cache: cache, events: events, proximity: proximity}
}

// Create registers a new listing in pending state awaiting moderation.
func (s *ListingService) Create(ctx context.Context, listing *domain.Listing) error {
	if listing.Title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if listing.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if !listing.Location.IsValid() {
		return fmt.Errorf("listing location is invalid")
	}

	listing.ID = uuid.NewString()
	listing.Status = domain.ListingPending
	listing.CreatedAt = time.Now().UTC()

	if err := s.listings.Create(ctx, listing); err != nil {
		return err
	}

	s.invalidateSearchCache(ctx)
	if s.events != nil {
		if err := s.events.PublishListingEvent(ctx, "created", listing.ID); err != nil {
			slog.Warn("failed to publish listing event", "listing_id", listing.ID, "error", err)
		}
	}
	return nil
}

// Update applies owner edits. Edits to an approved listing send it back to
// moderation.
func (s *ListingService) Update(ctx context.Context, ownerID string, listing *domain.Listing) error {
	existing, err := s.listings.GetByID(ctx, listing.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if existing.OwnerID != ownerID {
		return ErrForbidden
	}
	if !listing.Location.IsValid() {
		return fmt.Errorf("listing location is invalid")
	}

	listing.OwnerID = existing.OwnerID
	listing.CreatedAt = existing.CreatedAt
	listing.Status = domain.ListingPending

	if err := s.listings.Update(ctx, listing); err != nil {
		return err
	}

	s.invalidateSearchCache(ctx)
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "listings:id:"+listing.ID)
	}
	if s.events != nil {
		if err := s.events.PublishListingEvent(ctx, "updated", listing.ID); err != nil {
			slog.Warn("failed to publish listing event", "listing_id", listing.ID, "error", err)
		}
	}
	return nil
}

// Delete removes a listing. Only the owner or an admin may delete.
func (s *ListingService) Delete(ctx context.Context, actorID string, isAdmin bool, id string) error {
	existing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if existing.OwnerID != actorID && !isAdmin {
		return ErrForbidden
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateSearchCache(ctx)
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "listings:id:"+id)
	}
	if s.events != nil {
		if err := s.events.PublishListingEvent(ctx, "deleted", id); err != nil {
			slog.Warn("failed to publish listing event", "listing_id", id, "error", err)
		}
	}
	return nil
}

// GetByID returns a single listing.
func (s *ListingService) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	cacheKey := "listings:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var listing domain.Listing
			if err := json.Unmarshal(data, &listing); err == nil {
				return &listing, nil
			}
		}
	}

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		if data, err := json.Marshal(listing); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return listing, nil
}

// Search returns approved listings matching the filter, with the total count
// for pagination.
func (s *ListingService) Search(ctx context.Context, filter ports.ListingFilter) ([]domain.Listing, int, error) {
	if filter.Limit <= 0 || filter.Limit > 50 {
		filter.Limit = 20
	}
	return s.listings.Search(ctx, domain.ListingApproved, filter)
}

// ListByOwner returns all listings posted by an owner, regardless of status.
func (s *ListingService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	return s.listings.ListByOwner(ctx, ownerID)
}

// FindNearby returns approved listings near a reference point, each annotated
// with its distance. The reference is a campus from the catalog or the
// caller's own position.
func (s *ListingService) FindNearby(ctx context.Context, universityID string, userLocation *domain.GeoPoint, radiusKm float64, limit int) ([]domain.Listing, *domain.ReferencePoint, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	ref, err := s.proximity.ResolveReference(ctx, universityID, userLocation)
	if err != nil {
		return nil, nil, err
	}
	if radiusKm <= 0 {
		radiusKm = s.proximity.DefaultRadiusKm()
	}

	listings, err := s.listings.FindNearby(ctx, ref.Point.Lat, ref.Point.Lon, radiusKm, limit)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]Candidate, len(listings))
	for i, l := range listings {
		candidates[i] = Candidate{ID: l.ID, Location: l.Location}
	}
	annotations := s.proximity.Annotate(ref.Point, candidates, radiusKm)

	byID := make(map[string]domain.DistanceAnnotation, len(annotations))
	for _, a := range annotations {
		byID[a.ListingID] = a
	}

	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		a, ok := byID[l.ID]
		if !ok || !a.WithinRadius {
			continue
		}
		d := a.DistanceKm
		l.DistanceKm = &d
		out = append(out, l)
	}
	return out, ref, nil
}

// AddPhotos attaches uploaded photo references to an owner's listing.
func (s *ListingService) AddPhotos(ctx context.Context, ownerID, listingID string, photos []domain.ListingPhoto) error {
	existing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if existing.OwnerID != ownerID {
		return ErrForbidden
	}

	for i := range photos {
		photos[i].ID = uuid.NewString()
		photos[i].ListingID = listingID
	}
	if err := s.listings.AddPhotos(ctx, listingID, photos); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "listings:id:"+listingID)
	}
	return nil
}

// invalidateSearchCache drops the cached first search page. Deeper pages age
// out via TTL.
func (s *ListingService) invalidateSearchCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "listings:search:first")
	}
}
