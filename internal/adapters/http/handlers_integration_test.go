//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	handler "github.com/krili-app/krili/internal/adapters/http"
	"github.com/krili-app/krili/internal/adapters/postgres"
	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/usecases"
	"github.com/krili-app/krili/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("krili-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with real DB and repos, no cache or broker.
func setupTestDeps(t *testing.T, db *postgres.DB) *handler.Dependencies {
	userRepo := postgres.NewUserRepo(db)
	universityRepo := postgres.NewUniversityRepo(db)
	listingRepo := postgres.NewListingRepo(db)
	reservationRepo := postgres.NewReservationRepo(db)
	reportRepo := postgres.NewReportRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	proximity := usecases.NewProximityService(universityRepo, 15)

	return &handler.Dependencies{
		Auth:          usecases.NewAuthService(userRepo, testSecret, time.Hour),
		Listings:      usecases.NewListingService(listingRepo, nil, nil, proximity),
		Reservations:  usecases.NewReservationService(reservationRepo, listingRepo, nil),
		Universities:  usecases.NewUniversityService(universityRepo, nil),
		Proximity:     proximity,
		Routes:        usecases.NewRouteService(nil, testBounds, 2, time.Millisecond),
		Notifications: usecases.NewNotificationService(notificationRepo),
		Moderation:    usecases.NewModerationService(listingRepo, reportRepo, userRepo, statsRepo, nil),
		DB:            db,
	}
}

// seedTestOwner inserts an owner account and returns its UUID.
func seedTestOwner(t *testing.T, db *postgres.DB, email string) string {
	ctx := context.Background()
	var id string
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ('Test Owner', $1, 'x', 'owner')
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email).Scan(&id); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return id
}

// seedTestListing inserts an approved listing near central Tunis.
func seedTestListing(t *testing.T, db *postgres.DB, ownerID, title string, lat, lon float64) string {
	ctx := context.Background()
	var id string
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO listings (owner_id, title, description, location, price, type, status)
		VALUES ($1, $2, '', ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, 50, 'studio', 'approved')
		RETURNING id
	`, ownerID, title, lon, lat).Scan(&id); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return id
}

// TestListUniversities_Integration checks the seeded campus catalog is served.
func TestListUniversities_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/universities", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var universities []domain.University
	if err := json.NewDecoder(resp.Body).Decode(&universities); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(universities) == 0 {
		t.Error("expected seeded universities")
	}
}

// TestNearbyListings_Integration exercises the PostGIS radius query end to end.
func TestNearbyListings_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	ownerID := seedTestOwner(t, db, fmt.Sprintf("owner_%d@test.local", time.Now().UnixNano()))
	// Central Tunis, within walking distance of Université de Tunis
	seedTestListing(t, db, ownerID, "Integration studio", 36.8070, 10.1820)

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/listings/nearby?lat=36.8065&lon=10.1815&radius=2", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Reference domain.ReferencePoint `json:"reference"`
		Listings  []domain.Listing      `json:"listings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.Reference.Source != domain.RefUserLocation {
		t.Errorf("expected user_location reference, got %s", result.Reference.Source)
	}
	if len(result.Listings) == 0 {
		t.Fatal("expected at least the seeded listing")
	}
	for _, l := range result.Listings {
		if l.DistanceKm == nil {
			t.Errorf("listing %s missing distance annotation", l.ID)
		}
	}
}
