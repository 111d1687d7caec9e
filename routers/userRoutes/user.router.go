package userRoutes

import (
	userControllers "examly/controllers/userControllers"
	"examly/middleware"
	userValidator "examly/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/api/notifications", middleware.JWTMiddleware)

	userGroup.Get("/", userControllers.GetNotifications)
	userGroup.Put("/:id/read", userValidator.NotificationID(), userControllers.MarkNotificationRead)
}
