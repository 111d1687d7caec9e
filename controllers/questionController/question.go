package questionController

import (
	"log"

	"examly/database"
	"examly/middleware"
	"examly/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type alternativePayload struct {
	AlternativeText string `json:"alternative_text"`
	IsCorrect       bool   `json:"is_correct"`
	OrderNumber     int    `json:"order_number"`
}

type questionPayload struct {
	QuestionText          string               `json:"question_text"`
	QuestionType          models.QuestionType  `json:"question_type"`
	Points                float64              `json:"points"`
	Category              string               `json:"category"`
	Difficulty            string               `json:"difficulty"`
	IsPublic              *bool                `json:"is_public"`
	ExpectedAnswer        string               `json:"expected_answer"`
	AutoCorrectionEnabled bool                 `json:"auto_correction_enabled"`
	Alternatives          []alternativePayload `json:"alternatives"`
}

func validateQuestionPayload(reqData *questionPayload) map[string]string {
	errors := make(map[string]string)

	if reqData.QuestionText == "" {
		errors["question_text"] = "Question text is required!"
	}
	if !reqData.QuestionType.Valid() {
		errors["question_type"] = "Invalid question type!"
	}
	if reqData.Points <= 0 {
		errors["points"] = "Points must be greater than zero!"
	}

	switch reqData.QuestionType {
	case models.Essay:
		if reqData.AutoCorrectionEnabled && reqData.ExpectedAnswer == "" {
			errors["expected_answer"] = "An expected answer is required to enable auto correction!"
		}
	case models.SingleChoice, models.MultipleChoice, models.TrueFalse:
		if len(reqData.Alternatives) < 2 {
			errors["alternatives"] = "At least two alternatives are required!"
		}
		correct := 0
		for _, alt := range reqData.Alternatives {
			if alt.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			errors["alternatives"] = "At least one alternative must be correct!"
		}
		if correct > 1 && reqData.QuestionType != models.MultipleChoice {
			errors["alternatives"] = "Only multiple choice questions may have more than one correct alternative!"
		}
	}

	return errors
}

// CreateQuestion adds a question (with its alternatives) to the bank
func CreateQuestion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(questionPayload)
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if errors := validateQuestionPayload(reqData); len(errors) > 0 {
		return middleware.ValidationErrorResponse(c, errors)
	}

	isPublic := true
	if reqData.IsPublic != nil {
		isPublic = *reqData.IsPublic
	}
	difficulty := reqData.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	question := models.Question{
		CreatedBy:             userID,
		QuestionText:          reqData.QuestionText,
		QuestionType:          reqData.QuestionType,
		Points:                reqData.Points,
		Category:              reqData.Category,
		Difficulty:            difficulty,
		IsPublic:              isPublic,
		ExpectedAnswer:        reqData.ExpectedAnswer,
		AutoCorrectionEnabled: reqData.AutoCorrectionEnabled,
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, alt := range reqData.Alternatives {
			alternative := models.Alternative{
				QuestionID:      question.ID,
				AlternativeText: alt.AlternativeText,
				IsCorrect:       alt.IsCorrect,
				OrderNumber:     alt.OrderNumber,
			}
			if err := tx.Create(&alternative).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}

	database.Database.Db.Preload("Alternatives").First(&question, question.ID)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created successfully.", question)
}

// ListQuestions lists the caller's questions plus public ones
func ListQuestions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var questions []models.Question
	if err := database.Database.Db.
		Where("created_by = ? OR is_public = ?", userID, true).
		Preload("Alternatives").
		Order("created_at desc").
		Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully.", questions)
}

// GetQuestion fetches one bank question with its alternatives
func GetQuestion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	questionID := c.Locals("questionID").(uint)

	var question models.Question
	if err := database.Database.Db.Preload("Alternatives").First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	role, _ := c.Locals("userRole").(string)
	if !question.IsPublic && question.CreatedBy != userID && role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched successfully.", question)
}

// UpdateQuestion edits a bank question and replaces its alternatives.
// Attached exams keep grading against their attach-time snapshot points
// and the live alternatives; recorrection exists to replay scoring
// after an edit.
func UpdateQuestion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	questionID := c.Locals("questionID").(uint)

	db := database.Database.Db

	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	role, _ := c.Locals("userRole").(string)
	if question.CreatedBy != userID && role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this question!", nil)
	}

	reqData := new(questionPayload)
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	if errors := validateQuestionPayload(reqData); len(errors) > 0 {
		return middleware.ValidationErrorResponse(c, errors)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		question.QuestionText = reqData.QuestionText
		question.QuestionType = reqData.QuestionType
		question.Points = reqData.Points
		question.Category = reqData.Category
		if reqData.Difficulty != "" {
			question.Difficulty = reqData.Difficulty
		}
		if reqData.IsPublic != nil {
			question.IsPublic = *reqData.IsPublic
		}
		question.ExpectedAnswer = reqData.ExpectedAnswer
		question.AutoCorrectionEnabled = reqData.AutoCorrectionEnabled

		if err := tx.Save(&question).Error; err != nil {
			return err
		}

		if err := tx.Where("question_id = ?", question.ID).Delete(&models.Alternative{}).Error; err != nil {
			return err
		}
		for _, alt := range reqData.Alternatives {
			alternative := models.Alternative{
				QuestionID:      question.ID,
				AlternativeText: alt.AlternativeText,
				IsCorrect:       alt.IsCorrect,
				OrderNumber:     alt.OrderNumber,
			}
			if err := tx.Create(&alternative).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error updating question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	db.Preload("Alternatives").First(&question, question.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully.", question)
}

// DeleteQuestion removes a bank question that is not attached to any exam
func DeleteQuestion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	questionID := c.Locals("questionID").(uint)

	db := database.Database.Db

	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	role, _ := c.Locals("userRole").(string)
	if question.CreatedBy != userID && role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not have access to this question!", nil)
	}

	var attachedCount int64
	db.Model(&models.ExamQuestion{}).Where("question_id = ?", questionID).Count(&attachedCount)
	if attachedCount > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Question is attached to an exam and cannot be deleted!", nil)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&models.Alternative{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		log.Printf("Error deleting question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully.", nil)
}
