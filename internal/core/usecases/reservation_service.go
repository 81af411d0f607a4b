package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
	"github.com/krili-app/krili/internal/pkg/metrics"
)

// ReservationService handles booking business logic.
type ReservationService struct {
	reservations ports.ReservationRepository
	listings     ports.ListingRepository
	events       ports.EventPublisher
}

// NewReservationService creates a new ReservationService.
func NewReservationService(reservations ports.ReservationRepository, listings ports.ListingRepository, events ports.EventPublisher) *ReservationService {
	return &ReservationService{reservations: reservations, listings: listings, events: events}
}

// Create books a listing for the tenant. Only approved listings are bookable,
// the stay must not overlap a confirmed reservation, and the total price is
// computed server-side from the nightly rate.
func (s *ReservationService) Create(ctx context.Context, tenantID, listingID string, start, end time.Time, message string) (*domain.Reservation, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("end date must be after start date")
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrNotFound
	}
	if listing.Status != domain.ListingApproved {
		return nil, fmt.Errorf("listing is not open for booking")
	}
	if listing.OwnerID == tenantID {
		return nil, fmt.Errorf("owners cannot book their own listing")
	}

	overlap, err := s.reservations.HasOverlap(ctx, listingID, start, end)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrDatesUnavailable
	}

	nights := int(math.Ceil(end.Sub(start).Hours() / 24))
	if nights < 1 {
		nights = 1
	}

	r := &domain.Reservation{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		ListingID:  listingID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: listing.Price * float64(nights),
		Status:     domain.ReservationPending,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.reservations.Create(ctx, r); err != nil {
		return nil, err
	}
	metrics.ReservationsCreated.Inc()

	s.notify(ctx, listing.OwnerID, "New booking request",
		fmt.Sprintf("A tenant requested %q from %s to %s", listing.Title,
			start.Format("2006-01-02"), end.Format("2006-01-02")),
		map[string]any{"reservation_id": r.ID, "listing_id": listingID})

	return r, nil
}

// GetByID returns a single reservation. Only the tenant, the listing owner,
// or an admin may see it.
func (s *ReservationService) GetByID(ctx context.Context, actorID string, isAdmin bool, reservationID string) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	if isAdmin || r.TenantID == actorID {
		return r, nil
	}

	listing, err := s.listings.GetByID(ctx, r.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil || listing.OwnerID != actorID {
		return nil, ErrForbidden
	}
	return r, nil
}

// Respond lets the listing owner confirm or decline a pending reservation.
func (s *ReservationService) Respond(ctx context.Context, ownerID, reservationID string, accept bool) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}

	listing, err := s.listings.GetByID(ctx, r.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil || listing.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	if r.Status != domain.ReservationPending {
		return nil, ErrInvalidState
	}

	status := domain.ReservationCancelled
	title, body := "Booking declined", fmt.Sprintf("Your request for %q was declined", listing.Title)
	if accept {
		// Re-check: another reservation might have been confirmed meanwhile.
		overlap, err := s.reservations.HasOverlap(ctx, r.ListingID, r.StartDate, r.EndDate)
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, ErrDatesUnavailable
		}
		status = domain.ReservationConfirmed
		title, body = "Booking confirmed", fmt.Sprintf("Your request for %q was confirmed", listing.Title)
	}

	if err := s.reservations.SetStatus(ctx, reservationID, status); err != nil {
		return nil, err
	}
	r.Status = status

	s.notify(ctx, r.TenantID, title, body,
		map[string]any{"reservation_id": r.ID, "listing_id": r.ListingID})

	return r, nil
}

// Cancel lets the tenant withdraw a pending or confirmed reservation.
func (s *ReservationService) Cancel(ctx context.Context, tenantID, reservationID string) error {
	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if r == nil {
		return ErrNotFound
	}
	if r.TenantID != tenantID {
		return ErrForbidden
	}
	if r.Status != domain.ReservationPending && r.Status != domain.ReservationConfirmed {
		return ErrInvalidState
	}

	if err := s.reservations.SetStatus(ctx, reservationID, domain.ReservationCancelled); err != nil {
		return err
	}

	if listing, err := s.listings.GetByID(ctx, r.ListingID); err == nil && listing != nil {
		s.notify(ctx, listing.OwnerID, "Booking cancelled",
			fmt.Sprintf("A reservation for %q was cancelled by the tenant", listing.Title),
			map[string]any{"reservation_id": r.ID, "listing_id": r.ListingID})
	}
	return nil
}

// ListByTenant returns the tenant's reservations, newest first.
func (s *ReservationService) ListByTenant(ctx context.Context, tenantID string, offset, limit int) ([]domain.Reservation, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.reservations.ListByTenant(ctx, tenantID, offset, limit)
}

// ListByOwner returns reservations on the owner's listings, newest first.
func (s *ReservationService) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]domain.Reservation, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.reservations.ListByOwner(ctx, ownerID, offset, limit)
}

// SetStatus applies a workflow-driven status transition without ownership
// checks. Used by the booking workflow's activities.
func (s *ReservationService) SetStatus(ctx context.Context, reservationID string, status domain.ReservationStatus) error {
	return s.reservations.SetStatus(ctx, reservationID, status)
}

func (s *ReservationService) notify(ctx context.Context, userID, title, message string, data map[string]any) {
	if s.events == nil {
		return
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      "reservation",
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.PublishNotification(ctx, n); err != nil {
		slog.Warn("failed to publish notification", "user_id", userID, "error", err)
	}
}
