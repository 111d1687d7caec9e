package enrollmentController

import (
	"encoding/json"
	"time"

	"examly/database"
	"examly/grading"
	"examly/lifecycle"
	"examly/middleware"
	"examly/models"
	"examly/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StartExam starts or resumes a student's attempt. The exam's status is
// reconciled against the clock first; anything but published vetoes the
// start.
func StartExam(c *fiber.Ctx) error {
	studentID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	examID := c.Locals("examID").(uint)

	db := database.Database.Db
	now := time.Now()

	exam, err := lifecycle.ReconcileExam(db, examID, now)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exam not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exam!", nil)
	}
	if exam.Status != models.ExamPublished {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Exam is not available!", nil)
	}

	var enrollment models.ExamEnrollment
	err = db.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&enrollment).Error
	if err == nil {
		if enrollment.Status == models.EnrollmentCompleted {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Exam has already been finished!", nil)
		}
		// Resume the in-progress attempt with its existing answers.
		var answers []models.Answer
		db.Where("enrollment_id = ?", enrollment.ID).Find(&answers)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam resumed.", fiber.Map{
			"enrollment":       enrollment,
			"existing_answers": answers,
		})
	}
	if err != gorm.ErrRecordNotFound {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollment!", nil)
	}

	enrollment = models.ExamEnrollment{
		ExamID:    examID,
		StudentID: studentID,
		Status:    models.EnrollmentInProgress,
		StartTime: &now,
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start exam!", nil)
	}
	if res.RowsAffected == 0 {
		// A concurrent start won the insert; resume that attempt so the
		// start_time is only ever set once.
		if err := db.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&enrollment).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start exam!", nil)
		}
		if enrollment.Status == models.EnrollmentCompleted {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Exam has already been finished!", nil)
		}
		var answers []models.Answer
		db.Where("enrollment_id = ?", enrollment.ID).Find(&answers)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam resumed.", fiber.Map{
			"enrollment":       enrollment,
			"existing_answers": answers,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam started.", fiber.Map{
		"enrollment":       enrollment,
		"existing_answers": []models.Answer{},
	})
}

// GetEnrollmentStatus reports the caller's enrollment state for one
// exam; absence of a row reads as not_enrolled.
func GetEnrollmentStatus(c *fiber.Ctx) error {
	studentID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	examID := c.Locals("examID").(uint)

	db := database.Database.Db

	var enrollment models.ExamEnrollment
	if err := db.Where("exam_id = ? AND student_id = ?", examID, studentID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Not enrolled.", fiber.Map{
			"status": "not_enrolled",
		})
	}

	if enrollment.Status == models.EnrollmentInProgress {
		var answers []models.Answer
		db.Where("enrollment_id = ?", enrollment.ID).Find(&answers)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched.", fiber.Map{
			"enrollment":       enrollment,
			"existing_answers": answers,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched.", fiber.Map{
		"enrollment": enrollment,
	})
}

// SubmitAnswer upserts the answer for one question of an in-progress
// attempt. No scoring happens here; the last write per question wins.
func SubmitAnswer(c *fiber.Ctx) error {
	studentID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollmentID").(uint)

	reqData := new(struct {
		QuestionID           uint        `json:"question_id"`
		AnswerText           string      `json:"answer_text"`
		SelectedAlternatives interface{} `json:"selected_alternatives"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.QuestionID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "question_id is required!", nil)
	}

	// A scalar selection is folded into a one-element array so the
	// stored form is always a JSON array of alternative IDs.
	selectedJSON, err := normalizeSelection(reqData.SelectedAlternatives)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid selected_alternatives!", nil)
	}

	db := database.Database.Db

	var enrollment models.ExamEnrollment
	if err := db.First(&enrollment, enrollmentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}
	if enrollment.StudentID != studentID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this enrollment!", nil)
	}
	if enrollment.Status != models.EnrollmentInProgress {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Exam is not in progress!", nil)
	}

	// Atomic upsert keyed on (enrollment, question): concurrent
	// submissions resolve to last write wins instead of a unique
	// constraint error.
	answer := models.Answer{
		EnrollmentID:         enrollmentID,
		QuestionID:           reqData.QuestionID,
		AnswerText:           reqData.AnswerText,
		SelectedAlternatives: selectedJSON,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answer_text", "selected_alternatives", "updated_at"}),
	}).Create(&answer).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save answer!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer saved successfully.", nil)
}

// FinishExam completes the attempt: one full scoring pass over every
// attached question, totals persisted, status flipped to completed.
func FinishExam(c *fiber.Ctx) error {
	studentID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollmentID").(uint)

	db := database.Database.Db

	var enrollment models.ExamEnrollment
	if err := db.First(&enrollment, enrollmentID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}
	if enrollment.StudentID != studentID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this enrollment!", nil)
	}

	finished, pendingEssays, err := grading.FinishEnrollment(
		c.Context(), db, grading.DefaultProvider(), enrollmentID, time.Now())
	if err != nil {
		if err == grading.ErrNotInProgress {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Exam is not in progress!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to finish exam!", nil)
	}

	// Downstream notifications are best effort and must not delay the
	// response.
	go utils.NotifyExamFinished(*finished, pendingEssays)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam finished.", fiber.Map{
		"enrollment":      finished,
		"pending_answers": len(pendingEssays),
	})
}

// normalizeSelection encodes the submitted selection as a JSON array.
// Clients send either an array of IDs or a single scalar ID; nil means
// no selection.
func normalizeSelection(v interface{}) (datatypes.JSON, error) {
	switch t := v.(type) {
	case nil:
		return datatypes.JSON(`[]`), nil
	case []interface{}:
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return datatypes.JSON(raw), nil
	default:
		raw, err := json.Marshal([]interface{}{t})
		if err != nil {
			return nil, err
		}
		return datatypes.JSON(raw), nil
	}
}

// RecordMonitoringEvent stores a proctoring event for an enrollment
func RecordMonitoringEvent(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(uint); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		EnrollmentID uint           `json:"enrollment_id"`
		EventType    string         `json:"event_type"`
		EventData    datatypes.JSON `json:"event_data"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if reqData.EnrollmentID == 0 || reqData.EventType == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "enrollment_id and event_type are required!", nil)
	}

	event := models.MonitoringEvent{
		EnrollmentID: reqData.EnrollmentID,
		EventType:    reqData.EventType,
		EventData:    reqData.EventData,
	}
	if err := database.Database.Db.Create(&event).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record event!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Event recorded.", event)
}
