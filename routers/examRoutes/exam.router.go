package examRoutes

import (
	enrollmentController "examly/controllers/enrollmentController"
	examController "examly/controllers/examController"
	gradingController "examly/controllers/gradingController"
	"examly/middleware"
	"examly/models"
	examValidator "examly/validators/exam"

	"github.com/gofiber/fiber/v2"
)

func SetupExamRoutes(app *fiber.App) {
	examGroup := app.Group("/api/exams", middleware.JWTMiddleware)

	// Listing uses the throttled reconciliation policy; individual exam
	// access reconciles just that exam (targeted policy inside the
	// handlers); the instructor results view uses the eager policy.
	examGroup.Post("/", middleware.RequireRole(models.RoleProfessor, models.RoleAdmin), examValidator.CreateExam(), examController.CreateExam)
	examGroup.Get("/", middleware.SmartUpdateExamStatus, examController.ListExams)
	examGroup.Get("/:id", examValidator.ExamID(), examController.GetExam)
	examGroup.Put("/:id", middleware.RequireRole(models.RoleProfessor, models.RoleAdmin), examValidator.ExamID(), examController.UpdateExam)
	examGroup.Post("/:id/questions", middleware.RequireRole(models.RoleProfessor, models.RoleAdmin), examValidator.ExamID(), examController.AddQuestionsToExam)

	examGroup.Get("/:id/enrollment-status", examValidator.ExamID(), enrollmentController.GetEnrollmentStatus)
	examGroup.Post("/:id/start", middleware.RequireRole(models.RoleStudent), examValidator.ExamID(), enrollmentController.StartExam)

	examGroup.Get("/:id/pending-answers", middleware.RequireRole(models.RoleProfessor, models.RoleAdmin), examValidator.ExamID(), gradingController.GetPendingAnswers)
	examGroup.Get("/:id/results", middleware.RequireRole(models.RoleProfessor, models.RoleAdmin), middleware.AutoUpdateExamStatus, examValidator.ExamID(), gradingController.GetExamResults)
}
