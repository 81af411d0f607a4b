package usecases_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/usecases"
)

// --- Mock RoutingProvider ---

type mockRoutingProvider struct {
	mu      sync.Mutex
	calls   []time.Time
	routeFn func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error)
}

func (m *mockRoutingProvider) Route(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, time.Now())
	m.mu.Unlock()
	if m.routeFn != nil {
		return m.routeFn(ctx, from, to, mode)
	}
	return nil, fmt.Errorf("no route")
}

func (m *mockRoutingProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var regionBounds = domain.Bounds{MinLat: 30, MaxLat: 38, MinLon: 7, MaxLon: 12}

func roadRoute(from, to domain.GeoPoint) *domain.RouteResult {
	return &domain.RouteResult{
		Coordinates: []domain.GeoPoint{from, to},
		DistanceKm:  12.3,
		DurationMin: 18,
		Kind:        domain.RouteRoad,
	}
}

func TestRouteService_EnrichBatch_RoadRoutes(t *testing.T) {
	provider := &mockRoutingProvider{
		routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
			return roadRoute(from, to), nil
		},
	}
	svc := usecases.NewRouteService(provider, regionBounds, 2, time.Millisecond)

	dests := []usecases.Destination{
		{ID: "a", Location: domain.GeoPoint{Lat: 36.81, Lon: 10.19}},
		{ID: "b", Location: domain.GeoPoint{Lat: 36.85, Lon: 10.33}},
	}
	results := svc.EnrichBatch(context.Background(), tunis, dests, domain.ModeDriving, 0)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for id, r := range results {
		if r.Kind != domain.RouteRoad {
			t.Errorf("%s: expected road route, got %s", id, r.Kind)
		}
		if r.ListingID != id {
			t.Errorf("map key %s does not match result id %s", id, r.ListingID)
		}
	}
}

func TestRouteService_EnrichBatch_FallbackWithoutProvider(t *testing.T) {
	svc := usecases.NewRouteService(nil, regionBounds, 2, time.Millisecond)

	dests := []usecases.Destination{
		{ID: "a", Location: domain.GeoPoint{Lat: 36.85, Lon: 10.33}},
	}
	results := svc.EnrichBatch(context.Background(), tunis, dests, domain.ModeDriving, 2)

	r, ok := results["a"]
	if !ok {
		t.Fatal("expected a result for destination a")
	}
	if r.Kind != domain.RouteStraight {
		t.Fatalf("expected straight fallback, got %s", r.Kind)
	}
	if len(r.Coordinates) != 2 || r.Coordinates[0] != tunis {
		t.Errorf("fallback line should run reference to destination, got %+v", r.Coordinates)
	}
	// distance/40 km/h, so duration in minutes is distance*1.5 rounded.
	if r.DurationMin <= 0 {
		t.Errorf("expected positive duration, got %d", r.DurationMin)
	}
}

func TestRouteService_EnrichBatch_FallbackOnProviderError(t *testing.T) {
	provider := &mockRoutingProvider{
		routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
			return nil, fmt.Errorf("upstream 503")
		},
	}
	svc := usecases.NewRouteService(provider, regionBounds, 2, time.Millisecond)

	results := svc.EnrichBatch(context.Background(), tunis, []usecases.Destination{
		{ID: "a", Location: domain.GeoPoint{Lat: 36.85, Lon: 10.33}},
	}, domain.ModeWalking, 2)

	if r := results["a"]; r.Kind != domain.RouteStraight {
		t.Errorf("provider error must degrade to straight line, got %s", r.Kind)
	}
}

func TestRouteService_EnrichBatch_ImplausibleGeometryRejected(t *testing.T) {
	// Geometry that lands outside the region looks like a lat/lon axis mixup.
	provider := &mockRoutingProvider{
		routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
			return &domain.RouteResult{
				Coordinates: []domain.GeoPoint{{Lat: 10.19, Lon: 36.81}, {Lat: 10.33, Lon: 36.85}},
				DistanceKm:  12.3,
				DurationMin: 18,
				Kind:        domain.RouteRoad,
			}, nil
		},
	}
	svc := usecases.NewRouteService(provider, regionBounds, 2, time.Millisecond)

	results := svc.EnrichBatch(context.Background(), tunis, []usecases.Destination{
		{ID: "a", Location: domain.GeoPoint{Lat: 36.85, Lon: 10.33}},
	}, domain.ModeDriving, 2)

	if r := results["a"]; r.Kind != domain.RouteStraight {
		t.Errorf("out-of-region geometry must be discarded, got %s", r.Kind)
	}
}

func TestRouteService_EnrichBatch_SkipsInvalidDestinations(t *testing.T) {
	svc := usecases.NewRouteService(nil, regionBounds, 2, time.Millisecond)

	results := svc.EnrichBatch(context.Background(), tunis, []usecases.Destination{
		{ID: "ok", Location: domain.GeoPoint{Lat: 36.85, Lon: 10.33}},
		{ID: "zero", Location: domain.GeoPoint{}},
		{ID: "range", Location: domain.GeoPoint{Lat: 36.8, Lon: 200}},
	}, domain.ModeDriving, 2)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if _, ok := results["ok"]; !ok {
		t.Error("expected result keyed by 'ok'")
	}
}

func TestRouteService_EnrichBatch_InvalidReference(t *testing.T) {
	svc := usecases.NewRouteService(nil, regionBounds, 2, time.Millisecond)

	results := svc.EnrichBatch(context.Background(), domain.GeoPoint{}, []usecases.Destination{
		{ID: "a", Location: domain.GeoPoint{Lat: 36.85, Lon: 10.33}},
	}, domain.ModeDriving, 2)

	if len(results) != 0 {
		t.Errorf("invalid reference should yield an empty map, got %d entries", len(results))
	}
}

func TestRouteService_EnrichBatch_BatchPacing(t *testing.T) {
	provider := &mockRoutingProvider{
		routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
			return roadRoute(from, to), nil
		},
	}
	delay := 30 * time.Millisecond
	svc := usecases.NewRouteService(provider, regionBounds, 2, delay)

	dests := make([]usecases.Destination, 5)
	for i := range dests {
		dests[i] = usecases.Destination{
			ID:       fmt.Sprintf("d%d", i),
			Location: domain.GeoPoint{Lat: 36.80 + float64(i)*0.01, Lon: 10.18},
		}
	}

	start := time.Now()
	results := svc.EnrichBatch(context.Background(), tunis, dests, domain.ModeDriving, 2)
	elapsed := time.Since(start)

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if provider.callCount() != 5 {
		t.Errorf("expected 5 provider calls, got %d", provider.callCount())
	}
	// 5 destinations in batches of 2 means 3 batches and 2 inter-batch waits.
	if elapsed < 2*delay {
		t.Errorf("expected at least %v of pacing, finished in %v", 2*delay, elapsed)
	}
}

func TestRouteService_EnrichBatch_ContextCancelStopsPacing(t *testing.T) {
	provider := &mockRoutingProvider{
		routeFn: func(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
			return roadRoute(from, to), nil
		},
	}
	svc := usecases.NewRouteService(provider, regionBounds, 2, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dests := []usecases.Destination{
		{ID: "a", Location: domain.GeoPoint{Lat: 36.81, Lon: 10.19}},
		{ID: "b", Location: domain.GeoPoint{Lat: 36.82, Lon: 10.20}},
		{ID: "c", Location: domain.GeoPoint{Lat: 36.83, Lon: 10.21}},
	}

	done := make(chan map[string]domain.RouteResult, 1)
	go func() { done <- svc.EnrichBatch(ctx, tunis, dests, domain.ModeDriving, 2) }()

	select {
	case results := <-done:
		// The first batch completes, the cancelled context skips the wait.
		if len(results) == 0 {
			t.Error("expected at least the first batch of results")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("EnrichBatch did not return after context cancellation")
	}
}

func TestRouteService_EnrichBatch_NeverErrors(t *testing.T) {
	// Panic-free and non-nil even with pathological input.
	svc := usecases.NewRouteService(nil, regionBounds, 0, 0)
	results := svc.EnrichBatch(context.Background(), tunis, nil, domain.ModeDriving, -1)
	if results == nil {
		t.Error("expected non-nil result map")
	}
}
