package gradingController

import (
	"examly/database"
	"examly/middleware"
	"examly/models"

	"github.com/gofiber/fiber/v2"
)

// GetStudentResults lists the caller's completed exam results
func GetStudentResults(c *fiber.Ctx) error {
	studentID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var enrollments []models.ExamEnrollment
	if err := db.Where("student_id = ? AND status = ?", studentID, models.EnrollmentCompleted).
		Order("completed_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch results!", nil)
	}

	type result struct {
		Enrollment models.ExamEnrollment `json:"enrollment"`
		ExamTitle  string                `json:"exam_title"`
	}
	results := make([]result, 0, len(enrollments))
	for _, e := range enrollments {
		var exam models.Exam
		title := ""
		if err := db.First(&exam, e.ExamID).Error; err == nil {
			title = exam.Title
		}
		results = append(results, result{Enrollment: e, ExamTitle: title})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Results fetched successfully.", results)
}

// GetExamResults lists every completed enrollment of one exam for its
// instructor.
func GetExamResults(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	examID := c.Locals("examID").(uint)

	db := database.Database.Db

	var exam models.Exam
	if err := db.First(&exam, examID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
	}
	role, _ := c.Locals("userRole").(string)
	if exam.CreatedBy != userID && role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this exam!", nil)
	}

	var enrollments []models.ExamEnrollment
	if err := db.Where("exam_id = ? AND status = ?", examID, models.EnrollmentCompleted).
		Order("percentage desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch results!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Results fetched successfully.", fiber.Map{
		"exam":    exam,
		"results": enrollments,
	})
}
