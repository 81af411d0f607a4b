package http

import (
	"github.com/gofiber/fiber/v2"
)

// AdminStatsHandler returns the moderation dashboard counters.
func AdminStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Moderation.Stats(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(stats)
	}
}

// PendingListingsHandler returns the moderation queue, oldest first.
func PendingListingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)

		listings, total, err := deps.Moderation.PendingListings(c.Context(), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: listings, Pagination: pg})
	}
}

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// ReviewListingHandler approves or rejects a pending listing.
func ReviewListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reviewRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Moderation.ReviewListing(c.Context(), c.Params("id"), req.Approve, req.Reason); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type reportRequest struct {
	ListingID   string `json:"listing_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// ReportListingHandler files a report against a listing.
func ReportListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		report, err := deps.Moderation.ReportListing(c.Context(), userID(c), req.ListingID, req.Reason, req.Description)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	}
}

// PendingReportsHandler returns the open report queue.
func PendingReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)

		reports, total, err := deps.Moderation.PendingReports(c.Context(), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reports, Pagination: pg})
	}
}

type resolveRequest struct {
	Dismiss bool `json:"dismiss"`
}

// ResolveReportHandler closes a report, taking the listing down unless
// dismissed.
func ResolveReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req resolveRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Moderation.ResolveReport(c.Context(), c.Params("id"), req.Dismiss); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListUsersHandler returns non-admin accounts for the admin panel.
func ListUsersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)

		users, total, err := deps.Moderation.ListUsers(c.Context(), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: users, Pagination: pg})
	}
}

type verifyRequest struct {
	Verified bool `json:"verified"`
}

// VerifyUserHandler flips the identity verification flag on an account.
func VerifyUserHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req verifyRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		if err := deps.Moderation.VerifyUser(c.Context(), c.Params("id"), req.Verified); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
