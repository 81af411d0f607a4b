package ports

import (
	"context"

	"github.com/krili-app/krili/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishNotification(ctx context.Context, n *domain.Notification) error
	PublishListingEvent(ctx context.Context, event string, listingID string) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeNotifications(ctx context.Context, handler func(ctx context.Context, n *domain.Notification) error) error
	SubscribeListingEvents(ctx context.Context, handler func(ctx context.Context, event, listingID string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// RoutingProvider returns a road path between two points from an external
// routing service. A nil provider means road routing is disabled and callers
// fall back to straight-line estimates.
type RoutingProvider interface {
	// Route performs a single round trip for one origin/destination pair.
	// The returned distance and duration are the service's own reported
	// values, not recomputed.
	Route(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error)
}
