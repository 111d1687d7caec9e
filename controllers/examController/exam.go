package examController

import (
	"encoding/json"
	"log"
	"time"

	"examly/database"
	"examly/lifecycle"
	"examly/middleware"
	"examly/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateExam creates a new exam in draft (or published) state
func CreateExam(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		Title           string    `json:"title"`
		Description     string    `json:"description"`
		DurationMinutes int       `json:"duration_minutes"`
		StartTime       time.Time `json:"start_time"`
		EndTime         time.Time `json:"end_time"`
		ClassID         uint      `json:"class_id"`
		Status          string    `json:"status"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	status := models.ExamDraft
	if reqData.Status == string(models.ExamPublished) {
		status = models.ExamPublished
	}

	exam := models.Exam{
		Title:           reqData.Title,
		Description:     reqData.Description,
		DurationMinutes: reqData.DurationMinutes,
		StartTime:       reqData.StartTime,
		EndTime:         reqData.EndTime,
		ClassID:         reqData.ClassID,
		CreatedBy:       userID,
		Status:          status,
	}

	if err := database.Database.Db.Create(&exam).Error; err != nil {
		log.Printf("Error creating exam: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam created successfully.", exam)
}

// ListExams lists exams visible to the caller. Professors see the exams
// they created, students the published/finished exams of classes they
// are approved in, admins everything. Status freshness is handled by
// the lifecycle middleware on this route.
func ListExams(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var exams []models.Exam
	switch user.Role {
	case models.RoleAdmin:
		if err := db.Order("created_at desc").Find(&exams).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exams!", nil)
		}
	case models.RoleProfessor:
		if err := db.Where("created_by = ?", userID).Order("created_at desc").Find(&exams).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exams!", nil)
		}
	default:
		if err := db.
			Joins("JOIN class_enrollments ON class_enrollments.class_id = exams.class_id").
			Where("class_enrollments.student_id = ? AND class_enrollments.status = ?", userID, models.ClassEnrollmentApproved).
			Where("exams.status IN ?", []models.ExamStatus{models.ExamPublished, models.ExamFinished}).
			Order("exams.start_time desc").
			Find(&exams).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exams!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exams fetched successfully.", exams)
}

// GetExam fetches one exam, reconciling its status against the clock
// first (targeted policy), and returns its attached questions.
func GetExam(c *fiber.Ctx) error {
	examID := c.Locals("examID").(uint)

	exam, err := lifecycle.ReconcileExam(database.Database.Db, examID, time.Now())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exam!", nil)
	}

	var examQuestions []models.ExamQuestion
	if err := database.Database.Db.Where("exam_id = ?", examID).
		Order("order_number asc").Find(&examQuestions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exam questions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam fetched successfully.", fiber.Map{
		"exam":      exam,
		"questions": examQuestions,
	})
}

// UpdateExam edits an exam. Extending end_time past now on a finished
// exam reopens it immediately via reconciliation.
func UpdateExam(c *fiber.Ctx) error {
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

	reqData := new(struct {
		Title           *string    `json:"title"`
		Description     *string    `json:"description"`
		DurationMinutes *int       `json:"duration_minutes"`
		StartTime       *time.Time `json:"start_time"`
		EndTime         *time.Time `json:"end_time"`
		Status          *string    `json:"status"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Title != nil {
		exam.Title = *reqData.Title
	}
	if reqData.Description != nil {
		exam.Description = *reqData.Description
	}
	if reqData.DurationMinutes != nil {
		exam.DurationMinutes = *reqData.DurationMinutes
	}
	if reqData.StartTime != nil {
		exam.StartTime = *reqData.StartTime
	}
	if reqData.EndTime != nil {
		exam.EndTime = *reqData.EndTime
	}
	if reqData.Status != nil {
		status := models.ExamStatus(*reqData.Status)
		if status != models.ExamDraft && status != models.ExamPublished && status != models.ExamFinished {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid exam status!", nil)
		}
		exam.Status = status
	}

	// Apply the time-driven invariant right away so an extended
	// deadline reopens the exam in the same request.
	lifecycle.Reconcile(&exam, time.Now())

	if err := db.Save(&exam).Error; err != nil {
		log.Printf("Error updating exam: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update exam!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam updated successfully.", exam)
}

// AddQuestionsToExam attaches bank questions to an exam with
// exam-specific points, capturing an immutable content snapshot of each
// question at attach time.
func AddQuestionsToExam(c *fiber.Ctx) error {
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

	reqData := new(struct {
		Questions []struct {
			QuestionID  uint    `json:"question_id"`
			Points      float64 `json:"points"`
			OrderNumber int     `json:"order_number"`
		} `json:"questions"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if len(reqData.Questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "At least one question is required!", nil)
	}

	var attached []models.ExamQuestion
	for _, q := range reqData.Questions {
		if q.Points <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Question points must be greater than zero!", nil)
		}

		var question models.Question
		if err := db.Preload("Alternatives").First(&question, q.QuestionID).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
		}

		var existing models.ExamQuestion
		if err := db.Where("exam_id = ? AND question_id = ?", examID, q.QuestionID).
			First(&existing).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Question is already attached to this exam!", nil)
		}

		snapshot := models.QuestionSnapshotData{
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
		}
		for _, alt := range question.Alternatives {
			snapshot.Alternatives = append(snapshot.Alternatives, models.SnapshotAlternative{
				ID:              alt.ID,
				AlternativeText: alt.AlternativeText,
				OrderNumber:     alt.OrderNumber,
			})
		}
		snapshotJSON, err := json.Marshal(snapshot)
		if err != nil {
			log.Printf("Error marshaling question snapshot: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to attach question!", nil)
		}

		examQuestion := models.ExamQuestion{
			ExamID:           examID,
			QuestionID:       q.QuestionID,
			Points:           q.Points,
			OrderNumber:      q.OrderNumber,
			QuestionSnapshot: snapshotJSON,
		}
		if err := db.Create(&examQuestion).Error; err != nil {
			log.Printf("Error attaching question %d: %v", q.QuestionID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to attach question!", nil)
		}
		attached = append(attached, examQuestion)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Questions attached successfully.", attached)
}
