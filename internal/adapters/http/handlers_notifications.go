package http

import (
	"github.com/gofiber/fiber/v2"
)

// ListNotificationsHandler returns the user's notifications, newest first.
func ListNotificationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)

		notifications, total, err := deps.Notifications.ListByUser(c.Context(), userID(c), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: notifications, Pagination: pg})
	}
}

// MarkNotificationReadHandler marks one notification as read.
func MarkNotificationReadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Notifications.MarkRead(c.Context(), c.Params("id"), userID(c)); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MarkAllNotificationsReadHandler marks all of the user's notifications read.
func MarkAllNotificationsReadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Notifications.MarkAllRead(c.Context(), userID(c)); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteNotificationHandler removes a notification.
func DeleteNotificationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Notifications.Delete(c.Context(), c.Params("id"), userID(c)); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
