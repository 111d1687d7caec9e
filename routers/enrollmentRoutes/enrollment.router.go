package enrollmentRoutes

import (
	enrollmentController "examly/controllers/enrollmentController"
	"examly/middleware"
	enrollmentValidator "examly/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(app *fiber.App) {
	enrollmentGroup := app.Group("/api/enrollments", middleware.JWTMiddleware)

	enrollmentGroup.Post("/:id/submit-answer", enrollmentValidator.EnrollmentID(), enrollmentController.SubmitAnswer)
	enrollmentGroup.Post("/:id/finish", enrollmentValidator.EnrollmentID(), enrollmentController.FinishExam)

	app.Post("/api/monitoring/event", middleware.JWTMiddleware, enrollmentController.RecordMonitoringEvent)
}
