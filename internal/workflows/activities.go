package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
	"github.com/krili-app/krili/internal/core/usecases"
)

// BookingActivities holds the activity implementations for the booking workflow.
type BookingActivities struct {
	Reservations  *usecases.ReservationService
	Notifications *usecases.NotificationService
	Repo          ports.ReservationRepository
	Events        ports.EventPublisher
}

// NotifyOwner publishes an in-app notification telling the owner a booking
// request is waiting for them.
func (a *BookingActivities) NotifyOwner(ctx context.Context, input BookingInput) error {
	n := &domain.Notification{
		ID:      uuid.NewString(),
		UserID:  input.OwnerID,
		Title:   "New booking request",
		Message: fmt.Sprintf("A tenant requested %q. Respond within 48 hours.", input.ListingTitle),
		Type:    "reservation",
		Data: map[string]any{
			"reservation_id": input.ReservationID,
			"listing_id":     input.ListingID,
		},
		CreatedAt: time.Now().UTC(),
	}
	if a.Events != nil {
		if err := a.Events.PublishNotification(ctx, n); err != nil {
			return fmt.Errorf("publish owner notification: %w", err)
		}
		return nil
	}
	// No broker: persist directly so the notification still shows up.
	return a.Notifications.Store(ctx, n)
}

// ExpireIfPending cancels the reservation if the owner never responded.
// Returns true when the reservation was expired by this call.
func (a *BookingActivities) ExpireIfPending(ctx context.Context, reservationID string) (bool, error) {
	r, err := a.Repo.GetByID(ctx, reservationID)
	if err != nil {
		return false, fmt.Errorf("get reservation %s: %w", reservationID, err)
	}
	if r == nil || r.Status != domain.ReservationPending {
		return false, nil
	}
	if err := a.Reservations.SetStatus(ctx, reservationID, domain.ReservationCancelled); err != nil {
		return false, fmt.Errorf("expire reservation %s: %w", reservationID, err)
	}
	return true, nil
}

// NotifyTenantExpired tells the tenant their request timed out.
func (a *BookingActivities) NotifyTenantExpired(ctx context.Context, input BookingInput) error {
	n := &domain.Notification{
		ID:      uuid.NewString(),
		UserID:  input.TenantID,
		Title:   "Booking request expired",
		Message: fmt.Sprintf("The owner did not respond to your request for %q in time.", input.ListingTitle),
		Type:    "reservation",
		Data: map[string]any{
			"reservation_id": input.ReservationID,
			"listing_id":     input.ListingID,
		},
		CreatedAt: time.Now().UTC(),
	}
	if a.Events != nil {
		if err := a.Events.PublishNotification(ctx, n); err != nil {
			return fmt.Errorf("publish tenant notification: %w", err)
		}
		return nil
	}
	return a.Notifications.Store(ctx, n)
}

// CancelReservation rolls back a reservation whose owner could not be
// notified (saga compensation).
func (a *BookingActivities) CancelReservation(ctx context.Context, reservationID string) error {
	if err := a.Reservations.SetStatus(ctx, reservationID, domain.ReservationCancelled); err != nil {
		return fmt.Errorf("cancel reservation %s: %w", reservationID, err)
	}
	return nil
}
