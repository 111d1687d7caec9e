package gradingController

import (
	"examly/database"
	"examly/grading"
	"examly/middleware"
	"examly/models"
	"log"

	"github.com/gofiber/fiber/v2"
)

// RecalculateResults replays the scoring rules over completed
// enrollments matched by an exam/student/enrollment selector. This is
// also the manual retry path after a similarity-oracle outage.
func RecalculateResults(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		ExamID          uint `json:"exam_id"`
		StudentID       uint `json:"student_id"`
		EnrollmentID    uint `json:"enrollment_id"`
		RecorrectEssays bool `json:"recorrect_essays"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db
	role, _ := c.Locals("userRole").(string)

	// Professors may only recorrect their own exams.
	if reqData.ExamID != 0 && role == models.RoleProfessor {
		var exam models.Exam
		if err := db.First(&exam, reqData.ExamID).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
		}
		if exam.CreatedBy != userID {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this exam!", nil)
		}
	}

	sel := grading.Selector{
		ExamID:       reqData.ExamID,
		StudentID:    reqData.StudentID,
		EnrollmentID: reqData.EnrollmentID,
	}

	count, err := grading.Recorrect(c.Context(), db, grading.DefaultProvider(), sel, reqData.RecorrectEssays)
	if err != nil {
		if err == grading.ErrEmptySelector {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "exam_id, student_id or enrollment_id must be provided!", nil)
		}
		log.Printf("Error recalculating results: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to recalculate results!", fiber.Map{
			"recalculated_count": count,
		})
	}
	if count == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No completed enrollments matched!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Results recalculated successfully.", fiber.Map{
		"recalculated_count": count,
	})
}

// ManualGradeAnswer assigns a human grade to one answer. The grade is
// pinned: automated recorrection never overwrites it.
func ManualGradeAnswer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	answerID := c.Locals("answerID").(uint)

	reqData := new(struct {
		PointsEarned *float64 `json:"points_earned"`
		Feedback     string   `json:"feedback"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.PointsEarned == nil || *reqData.PointsEarned < 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "points_earned must be zero or positive!", nil)
	}

	db := database.Database.Db

	var answer models.Answer
	if err := db.First(&answer, answerID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Answer not found!", nil)
	}

	var enrollment models.ExamEnrollment
	if err := db.First(&enrollment, answer.EnrollmentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	role, _ := c.Locals("userRole").(string)
	if role == models.RoleProfessor {
		var exam models.Exam
		if err := db.First(&exam, enrollment.ExamID).Error; err != nil || exam.CreatedBy != userID {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this answer!", nil)
		}
	}

	updated, err := grading.ApplyManualGrade(db, answerID, *reqData.PointsEarned, reqData.Feedback)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer graded successfully.", fiber.Map{
		"enrollment": updated,
	})
}

// GetPendingAnswers lists the essay answers of an exam still awaiting
// correction, for the instructor's grading queue.
func GetPendingAnswers(c *fiber.Ctx) error {
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

	// Only completed attempts belong in the queue; answers of attempts
	// still in progress are ungraded by definition, not pending.
	var answers []models.Answer
	if err := db.
		Joins("JOIN exam_enrollments ON exam_enrollments.id = answers.enrollment_id").
		Where("exam_enrollments.exam_id = ? AND exam_enrollments.status = ?", examID, models.EnrollmentCompleted).
		Find(&answers).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch pending answers!", nil)
	}

	pending := make([]models.Answer, 0, len(answers))
	for _, a := range answers {
		if a.CorrectionMethod.Normalize() == models.CorrectionPending {
			pending = append(pending, a)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending answers fetched.", pending)
}
