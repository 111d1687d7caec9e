package middleware

import (
	"examly/database"
	"examly/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that allows only users whose role is
// in the given set. The role is re-read from the database so a stale
// token cannot escalate.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		var user models.User
		if err := database.Database.Db.First(&user, userID).Error; err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}

		for _, r := range roles {
			if user.Role == r {
				c.Locals("userRole", user.Role)
				return c.Next()
			}
		}

		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}
