package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/pkg/metrics"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream, and ensures the streams
// exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	streams := []nats.StreamConfig{
		{
			Name:      "NOTIFICATIONS",
			Subjects:  []string{"krili.notify.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "LISTING_EVENTS",
			Subjects:  []string{"krili.listing.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishNotification publishes a notification keyed by recipient so the
// WebSocket relay can filter per user.
func (p *Publisher) PublishNotification(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish("krili.notify."+n.UserID, data); err != nil {
		return err
	}
	metrics.NotificationsPublished.WithLabelValues(n.Type).Inc()
	return nil
}

// PublishListingEvent publishes a listing lifecycle event (created, updated,
// deleted, approved, rejected).
func (p *Publisher) PublishListingEvent(ctx context.Context, event string, listingID string) error {
	payload, err := json.Marshal(listingEvent{Event: event, ListingID: listingID})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("krili.listing."+event, payload)
	return err
}

type listingEvent struct {
	Event     string `json:"event"`
	ListingID string `json:"listing_id"`
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
