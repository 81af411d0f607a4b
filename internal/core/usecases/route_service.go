package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
	"github.com/krili-app/krili/internal/pkg/geospatial"
	"github.com/krili-app/krili/internal/pkg/metrics"
)

// Destination is one routing target: a listing id and its point.
type Destination struct {
	ID       string
	Location domain.GeoPoint
}

// RouteService obtains travel paths from a reference point to listings,
// preferring real routed paths from the routing provider and falling back to
// straight-line estimates whenever the provider is absent, failing, or
// returning implausible geometry.
type RouteService struct {
	provider   ports.RoutingProvider // nil disables road routing entirely
	bounds     domain.Bounds
	batchSize  int
	batchDelay time.Duration
}

// NewRouteService creates a new RouteService. bounds is the plausibility box
// for routed paths; batchSize and batchDelay set the rate-limiting discipline
// for provider calls.
func NewRouteService(provider ports.RoutingProvider, bounds domain.Bounds, batchSize int, batchDelay time.Duration) *RouteService {
	if batchSize <= 0 {
		batchSize = 2
	}
	return &RouteService{
		provider:   provider,
		bounds:     bounds,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// EnrichBatch returns one RouteResult per valid destination, keyed by
// destination id. Destinations with invalid coordinates get no entry.
//
// Destinations are processed in groups of batchSize (the service default when
// batchSize <= 0); within a group requests run concurrently and all settle
// before the next group starts, separated by the configured delay. A provider
// failure on one destination degrades only that destination to a straight-line
// result. EnrichBatch never returns an error: an unreachable provider yields
// an all-fallback mapping.
//
// Cancelling ctx stops dispatching further groups; results settled so far are
// returned.
func (s *RouteService) EnrichBatch(ctx context.Context, reference domain.GeoPoint, destinations []Destination, mode domain.TravelMode, batchSize int) map[string]domain.RouteResult {
	results := make(map[string]domain.RouteResult)
	if !reference.IsValid() {
		return results
	}
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	valid := make([]Destination, 0, len(destinations))
	for _, d := range destinations {
		if !d.Location.IsValid() {
			slog.Debug("skipping destination with invalid coordinates",
				"listing_id", d.ID, "lat", d.Location.Lat, "lon", d.Location.Lon)
			continue
		}
		valid = append(valid, d)
	}

	var mu sync.Mutex
	for i := 0; i < len(valid); i += batchSize {
		end := i + batchSize
		if end > len(valid) {
			end = len(valid)
		}

		var wg sync.WaitGroup
		for _, dest := range valid[i:end] {
			wg.Add(1)
			go func(d Destination) {
				defer wg.Done()
				r := s.routeOne(ctx, reference, d, mode)
				mu.Lock()
				results[d.ID] = r
				mu.Unlock()
			}(dest)
		}
		wg.Wait()

		// Fixed pacing between groups keeps us under the provider's
		// rate limit.
		if end < len(valid) {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(s.batchDelay):
			}
		}
	}

	return results
}

// routeOne resolves a single destination: provider first, fallback always.
func (s *RouteService) routeOne(ctx context.Context, reference domain.GeoPoint, dest Destination, mode domain.TravelMode) domain.RouteResult {
	if s.provider != nil {
		route, err := s.provider.Route(ctx, reference, dest.Location, mode)
		switch {
		case err != nil:
			slog.Warn("routing provider failed, using straight-line fallback",
				"listing_id", dest.ID, "error", err)
			metrics.RoutingProviderErrors.WithLabelValues("request").Inc()
		case !s.plausible(route):
			// Endpoints outside the deployment region almost always mean
			// the provider's [lon,lat] order leaked through unswapped.
			slog.Warn("routing provider returned implausible geometry",
				"listing_id", dest.ID)
			metrics.RoutingProviderErrors.WithLabelValues("implausible").Inc()
		default:
			route.ListingID = dest.ID
			metrics.RoutesEnriched.WithLabelValues(string(domain.RouteRoad)).Inc()
			return *route
		}
	}

	metrics.RoutesEnriched.WithLabelValues(string(domain.RouteStraight)).Inc()
	return s.straightLine(reference, dest, mode)
}

// plausible checks that a routed path is non-empty and that both endpoints
// fall inside the configured region bounds.
func (s *RouteService) plausible(route *domain.RouteResult) bool {
	if route == nil || len(route.Coordinates) < 2 {
		return false
	}
	first := route.Coordinates[0]
	last := route.Coordinates[len(route.Coordinates)-1]
	return s.bounds.Contains(first) && s.bounds.Contains(last)
}

// straightLine builds the two-point fallback result.
func (s *RouteService) straightLine(reference domain.GeoPoint, dest Destination, mode domain.TravelMode) domain.RouteResult {
	d := geospatial.HaversineKm(reference.Lat, reference.Lon, dest.Location.Lat, dest.Location.Lon)
	return domain.RouteResult{
		ListingID:   dest.ID,
		Coordinates: []domain.GeoPoint{reference, dest.Location},
		DistanceKm:  d,
		DurationMin: geospatial.EstimateDurationMin(d, mode == domain.ModeWalking),
		Kind:        domain.RouteStraight,
	}
}
