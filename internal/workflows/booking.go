package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// BookingInput is the input for the booking workflow.
type BookingInput struct {
	ReservationID string
	ListingID     string
	TenantID      string
	OwnerID       string
	ListingTitle  string
	// ResponseTimeout bounds how long the owner may sit on a pending
	// request before it auto-expires.
	ResponseTimeout time.Duration
}

const defaultResponseTimeout = 48 * time.Hour

// BookingWorkflow orchestrates the lifecycle of a booking request: notify the
// owner, wait for a response, and auto-expire stale requests. If the owner
// cannot be notified at all, the reservation is cancelled (saga compensation)
// so the tenant is not left waiting on a request nobody will ever see.
func BookingWorkflow(ctx workflow.Context, input BookingInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting booking workflow", "reservationID", input.ReservationID)

	if input.ResponseTimeout <= 0 {
		input.ResponseTimeout = defaultResponseTimeout
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Notify the owner about the new request
	err := workflow.ExecuteActivity(ctx, "NotifyOwner", input).Get(ctx, nil)
	if err != nil {
		logger.Warn("owner notification failed, compensating", "error", err)
		// Compensate: cancel the reservation the tenant just created
		_ = workflow.ExecuteActivity(ctx, "CancelReservation", input.ReservationID).Get(ctx, nil)
		return err
	}

	// Step 2: Give the owner time to respond
	if err := workflow.Sleep(ctx, input.ResponseTimeout); err != nil {
		return err
	}

	// Step 3: Expire the request if it is still pending
	var expired bool
	err = workflow.ExecuteActivity(ctx, "ExpireIfPending", input.ReservationID).Get(ctx, &expired)
	if err != nil {
		return err
	}
	if expired {
		_ = workflow.ExecuteActivity(ctx, "NotifyTenantExpired", input).Get(ctx, nil)
		logger.Info("Booking request expired without a response", "reservationID", input.ReservationID)
		return nil
	}

	logger.Info("Booking workflow finished", "reservationID", input.ReservationID)
	return nil
}
