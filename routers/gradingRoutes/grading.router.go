package gradingRoutes

import (
	gradingController "examly/controllers/gradingController"
	"examly/middleware"
	"examly/models"
	gradingValidator "examly/validators/grading"

	"github.com/gofiber/fiber/v2"
)

func SetupGradingRoutes(app *fiber.App) {
	app.Post("/api/results/recalculate",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleProfessor, models.RoleAdmin),
		gradingValidator.Recalculate(),
		gradingController.RecalculateResults)

	app.Post("/api/answers/:id/grade",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleProfessor, models.RoleAdmin),
		gradingValidator.AnswerID(),
		gradingController.ManualGradeAnswer)

	app.Get("/api/students/results",
		middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleStudent),
		gradingController.GetStudentResults)
}
