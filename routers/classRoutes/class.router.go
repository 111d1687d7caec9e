package classRoutes

import (
	classController "examly/controllers/classController"
	"examly/middleware"
	"examly/models"
	classValidator "examly/validators/class"

	"github.com/gofiber/fiber/v2"
)

func SetupClassRoutes(app *fiber.App) {
	classGroup := app.Group("/api/classes", middleware.JWTMiddleware)

	classGroup.Post("/", middleware.RequireRole(models.RoleProfessor, models.RoleAdmin), classController.CreateClass)
	classGroup.Get("/", classController.ListClasses)
	classGroup.Get("/:id", classValidator.ClassID(), classController.GetClass)
}
