package userValidator

import (
	"strconv"
	"strings"

	"examly/middleware"

	"github.com/gofiber/fiber/v2"
)

// NotificationID validates the :id route param and stores it in Locals
func NotificationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Notification ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Notification ID!", nil)
		}

		c.Locals("notificationID", uint(id))
		return c.Next()
	}
}
