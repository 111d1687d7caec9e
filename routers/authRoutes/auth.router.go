package authRoutes

import (
	authController "examly/controllers/authController"
	"examly/middleware"
	"examly/models"
	authValidator "examly/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Post("/register", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin), authValidator.Register(), authController.Register)
	authGroup.Get("/me", middleware.JWTMiddleware, authController.Me)
}
