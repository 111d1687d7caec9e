package questionRoutes

import (
	questionController "examly/controllers/questionController"
	"examly/middleware"
	"examly/models"
	questionValidator "examly/validators/question"

	"github.com/gofiber/fiber/v2"
)

func SetupQuestionRoutes(app *fiber.App) {
	questionGroup := app.Group("/api/questions", middleware.JWTMiddleware, middleware.RequireRole(models.RoleProfessor, models.RoleAdmin))

	questionGroup.Post("/", questionController.CreateQuestion)
	questionGroup.Get("/", questionController.ListQuestions)
	questionGroup.Get("/:id", questionValidator.QuestionID(), questionController.GetQuestion)
	questionGroup.Put("/:id", questionValidator.QuestionID(), questionController.UpdateQuestion)
	questionGroup.Delete("/:id", questionValidator.QuestionID(), questionController.DeleteQuestion)
}
