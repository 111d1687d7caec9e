package gradingValidator

import (
	"strconv"
	"strings"

	"examly/middleware"

	"github.com/gofiber/fiber/v2"
)

// AnswerID validates the :id route param and stores it in Locals
func AnswerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Answer ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Answer ID!", nil)
		}

		c.Locals("answerID", uint(id))
		return c.Next()
	}
}

// Recalculate validates the recorrection request body
func Recalculate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ExamID       uint `json:"exam_id"`
			StudentID    uint `json:"student_id"`
			EnrollmentID uint `json:"enrollment_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.ExamID == 0 && reqData.StudentID == 0 && reqData.EnrollmentID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "exam_id, student_id or enrollment_id must be provided!", nil)
		}

		return c.Next()
	}
}
