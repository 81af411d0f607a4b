package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/krili-app/krili/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeNotifications consumes notification events with a durable consumer
// so the notifier worker can restart without losing messages.
func (s *Subscriber) SubscribeNotifications(ctx context.Context, handler func(ctx context.Context, n *domain.Notification) error) error {
	sub, err := s.js.Subscribe("krili.notify.>", func(msg *nats.Msg) {
		var n domain.Notification
		if err := json.Unmarshal(msg.Data, &n); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &n); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("notification-store"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeListingEvents consumes listing lifecycle events.
func (s *Subscriber) SubscribeListingEvents(ctx context.Context, handler func(ctx context.Context, event, listingID string) error) error {
	sub, err := s.js.Subscribe("krili.listing.>", func(msg *nats.Msg) {
		var ev listingEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, ev.Event, ev.ListingID); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("listing-events"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
