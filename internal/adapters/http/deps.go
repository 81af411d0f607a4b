package http

import (
	"github.com/nats-io/nats.go"

	"github.com/krili-app/krili/internal/adapters/postgres"
	"github.com/krili-app/krili/internal/adapters/valkey"
	"github.com/krili-app/krili/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Auth          *usecases.AuthService
	Listings      *usecases.ListingService
	Reservations  *usecases.ReservationService
	Universities  *usecases.UniversityService
	Proximity     *usecases.ProximityService
	Routes        *usecases.RouteService
	Notifications *usecases.NotificationService
	Moderation    *usecases.ModerationService
	NATS          *nats.Conn
	DB            *postgres.DB
	Cache         *valkey.Cache
}
