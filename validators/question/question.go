package questionValidator

import (
	"strconv"
	"strings"

	"examly/middleware"

	"github.com/gofiber/fiber/v2"
)

// QuestionID validates the :id route param and stores it in Locals
func QuestionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Question ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Question ID!", nil)
		}

		c.Locals("questionID", uint(id))
		return c.Next()
	}
}
