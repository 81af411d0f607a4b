package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
	"github.com/krili-app/krili/internal/pkg/geospatial"
	"github.com/krili-app/krili/internal/pkg/metrics"
)

// Candidate is the slice of a listing this subsystem reads: an id and a point.
type Candidate struct {
	ID       string
	Location domain.GeoPoint
}

// ProximityService computes straight-line distances from a reference point to
// listing candidates and classifies them against a radius.
type ProximityService struct {
	universities ports.UniversityRepository
	defaultKm    float64
}

// NewProximityService creates a new ProximityService.
func NewProximityService(universities ports.UniversityRepository, defaultRadiusKm float64) *ProximityService {
	return &ProximityService{universities: universities, defaultKm: defaultRadiusKm}
}

// DefaultRadiusKm returns the configured radius used when a caller passes none.
func (s *ProximityService) DefaultRadiusKm() float64 {
	return s.defaultKm
}

// Annotate computes the distance from reference to each candidate and flags
// whether it falls within radiusKm. Pure and deterministic: no side effects
// beyond a skip counter, output order preserves input order.
//
// An invalid reference yields an empty result, meaning "no reference
// selected", not an error. Candidates with invalid coordinates are skipped
// silently; one bad candidate never fails the batch.
func (s *ProximityService) Annotate(reference domain.GeoPoint, candidates []Candidate, radiusKm float64) []domain.DistanceAnnotation {
	if !reference.IsValid() {
		return nil
	}
	if radiusKm <= 0 {
		radiusKm = s.defaultKm
	}

	annotations := make([]domain.DistanceAnnotation, 0, len(candidates))
	for _, c := range candidates {
		if !c.Location.IsValid() {
			slog.Debug("skipping candidate with invalid coordinates",
				"listing_id", c.ID, "lat", c.Location.Lat, "lon", c.Location.Lon)
			metrics.ProximityCandidatesSkipped.Inc()
			continue
		}

		d := geospatial.HaversineKm(reference.Lat, reference.Lon, c.Location.Lat, c.Location.Lon)
		annotations = append(annotations, domain.DistanceAnnotation{
			ListingID:    c.ID,
			DistanceKm:   d,
			WithinRadius: d <= radiusKm,
		})
	}
	return annotations
}

// ResolveReference turns a reference selector into a concrete point.
// universityID selects a campus from the catalog; otherwise userLocation is
// used. A missing or invalid user location is the one failure this subsystem
// surfaces to the caller: no default location is ever synthesized.
func (s *ProximityService) ResolveReference(ctx context.Context, universityID string, userLocation *domain.GeoPoint) (*domain.ReferencePoint, error) {
	if universityID != "" {
		u, err := s.universities.GetByID(ctx, universityID)
		if err != nil {
			return nil, fmt.Errorf("university %s: %w", universityID, err)
		}
		if u == nil {
			return nil, fmt.Errorf("university %s: %w", universityID, ErrNotFound)
		}
		return &domain.ReferencePoint{Point: u.Location, Source: domain.RefUniversity}, nil
	}

	if userLocation == nil || !userLocation.IsValid() {
		return nil, fmt.Errorf("user location unavailable")
	}
	return &domain.ReferencePoint{Point: *userLocation, Source: domain.RefUserLocation}, nil
}
