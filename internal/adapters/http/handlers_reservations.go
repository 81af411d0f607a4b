package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type reservationRequest struct {
	ListingID string `json:"listing_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Message   string `json:"message"`
}

// CreateReservationHandler books a listing for the authenticated tenant.
func CreateReservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reservationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return errBadRequest(c, "start_date must be YYYY-MM-DD")
		}
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return errBadRequest(c, "end_date must be YYYY-MM-DD")
		}

		r, err := deps.Reservations.Create(c.Context(), userID(c), req.ListingID, start, end, req.Message)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// MyReservationsHandler returns the authenticated tenant's reservations.
func MyReservationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)

		reservations, total, err := deps.Reservations.ListByTenant(c.Context(), userID(c), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reservations, Pagination: pg})
	}
}

// GetReservationHandler returns a single reservation for its tenant, the
// listing owner, or an admin.
func GetReservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := deps.Reservations.GetByID(c.Context(), userID(c), isAdmin(c), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(r)
	}
}

// OwnerReservationsHandler returns reservations on the owner's listings.
func OwnerReservationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)

		reservations, total, err := deps.Reservations.ListByOwner(c.Context(), userID(c), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reservations, Pagination: pg})
	}
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// RespondReservationHandler lets the owner confirm or decline a request.
func RespondReservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req respondRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		r, err := deps.Reservations.Respond(c.Context(), userID(c), c.Params("id"), req.Accept)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(r)
	}
}

// CancelReservationHandler lets the tenant withdraw a reservation.
func CancelReservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Reservations.Cancel(c.Context(), userID(c), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
