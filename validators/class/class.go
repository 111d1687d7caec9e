package classValidator

import (
	"strconv"
	"strings"

	"examly/middleware"

	"github.com/gofiber/fiber/v2"
)

// ClassID validates the :id route param and stores it in Locals
func ClassID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Class ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Class ID!", nil)
		}

		c.Locals("classID", uint(id))
		return c.Next()
	}
}
