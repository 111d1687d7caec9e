package examValidator

import (
	"strconv"
	"strings"
	"time"

	"examly/middleware"

	"github.com/gofiber/fiber/v2"
)

// ExamID validates the :id route param and stores it in Locals
func ExamID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Exam ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Exam ID!", nil)
		}

		c.Locals("examID", uint(id))
		return c.Next()
	}
}

func CreateExam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title           string    `json:"title"`
			DurationMinutes int       `json:"duration_minutes"`
			StartTime       time.Time `json:"start_time"`
			EndTime         time.Time `json:"end_time"`
			ClassID         uint      `json:"class_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.DurationMinutes <= 0 {
			errors["duration_minutes"] = "Duration must be greater than 0!"
		}
		if reqData.StartTime.IsZero() || reqData.EndTime.IsZero() {
			errors["start_time"] = "Start and end time are required!"
		} else if !reqData.EndTime.After(reqData.StartTime) {
			errors["end_time"] = "End time must be after start time!"
		}
		if reqData.ClassID == 0 {
			errors["class_id"] = "Class ID is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		return c.Next()
	}
}
