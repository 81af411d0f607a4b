package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
	"github.com/krili-app/krili/internal/pkg/metrics"
)

// ModerationService handles admin workflows: listing review, reports, user
// verification, and the dashboard.
type ModerationService struct {
	listings ports.ListingRepository
	reports  ports.ReportRepository
	users    ports.UserRepository
	stats    ports.StatsRepository
	events   ports.EventPublisher
}

// NewModerationService creates a new ModerationService.
func NewModerationService(listings ports.ListingRepository, reports ports.ReportRepository, users ports.UserRepository, stats ports.StatsRepository, events ports.EventPublisher) *ModerationService {
	return &ModerationService{listings: listings, reports: reports, users: users, stats: stats, events: events}
}

// PendingListings returns listings awaiting review.
func (s *ModerationService) PendingListings(ctx context.Context, offset, limit int) ([]domain.Listing, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.listings.ListByStatus(ctx, domain.ListingPending, offset, limit)
}

// ReviewListing approves or rejects a pending listing and notifies the owner.
func (s *ModerationService) ReviewListing(ctx context.Context, listingID string, approve bool, reason string) error {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrNotFound
	}
	if listing.Status != domain.ListingPending {
		return ErrInvalidState
	}

	status := domain.ListingRejected
	outcome := "rejected"
	title, body := "Listing rejected", fmt.Sprintf("Your listing %q was rejected", listing.Title)
	if reason != "" {
		body += ": " + reason
	}
	if approve {
		status = domain.ListingApproved
		outcome = "approved"
		title, body = "Listing approved", fmt.Sprintf("Your listing %q is now visible to tenants", listing.Title)
	}

	if err := s.listings.SetStatus(ctx, listingID, status); err != nil {
		return err
	}
	metrics.ListingsModerated.WithLabelValues(outcome).Inc()

	s.notify(ctx, listing.OwnerID, title, body, map[string]any{"listing_id": listingID})
	if s.events != nil {
		if err := s.events.PublishListingEvent(ctx, outcome, listingID); err != nil {
			slog.Warn("failed to publish listing event", "listing_id", listingID, "error", err)
		}
	}
	return nil
}

// ReportListing files a report against a listing.
func (s *ModerationService) ReportListing(ctx context.Context, reporterID, listingID, reason, description string) (*domain.Report, error) {
	if reason == "" {
		return nil, fmt.Errorf("reason is required")
	}
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrNotFound
	}

	report := &domain.Report{
		ID:          uuid.NewString(),
		ReporterID:  reporterID,
		ListingID:   listingID,
		Reason:      reason,
		Description: description,
		Status:      domain.ReportPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// PendingReports returns open reports for the admin queue.
func (s *ModerationService) PendingReports(ctx context.Context, offset, limit int) ([]domain.Report, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.reports.ListPending(ctx, offset, limit)
}

// ResolveReport closes a report, optionally taking the listing down.
func (s *ModerationService) ResolveReport(ctx context.Context, reportID string, dismiss bool) error {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	if report == nil {
		return ErrNotFound
	}
	if report.Status != domain.ReportPending {
		return ErrInvalidState
	}

	status := domain.ReportResolved
	if dismiss {
		status = domain.ReportDismissed
	}
	if err := s.reports.SetStatus(ctx, reportID, status); err != nil {
		return err
	}

	if !dismiss {
		if err := s.listings.SetStatus(ctx, report.ListingID, domain.ListingRejected); err != nil {
			return err
		}
		if listing, err := s.listings.GetByID(ctx, report.ListingID); err == nil && listing != nil {
			s.notify(ctx, listing.OwnerID, "Listing taken down",
				fmt.Sprintf("Your listing %q was removed after a report", listing.Title),
				map[string]any{"listing_id": report.ListingID})
		}
	}
	return nil
}

// ListUsers returns non-admin accounts for the admin panel.
func (s *ModerationService) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.users.List(ctx, domain.RoleAdmin, offset, limit)
}

// VerifyUser marks an account as identity-verified.
func (s *ModerationService) VerifyUser(ctx context.Context, userID string, verified bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if err := s.users.SetVerified(ctx, userID, verified); err != nil {
		return err
	}
	if verified {
		s.notify(ctx, userID, "Account verified", "Your account has been verified", nil)
	}
	return nil
}

// Stats returns the admin dashboard counters.
func (s *ModerationService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	return s.stats.AdminStats(ctx)
}

func (s *ModerationService) notify(ctx context.Context, userID, title, message string, data map[string]any) {
	if s.events == nil {
		return
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      "moderation",
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.PublishNotification(ctx, n); err != nil {
		slog.Warn("failed to publish notification", "user_id", userID, "error", err)
	}
}
