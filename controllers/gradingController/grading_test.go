package gradingController_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"examly/config"
	"examly/database"
	"examly/middleware"
	"examly/models"
	examRoutes "examly/routers/examRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite gives every pooled connection its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	config.AppConfig = &config.Config{
		JWTKey:                   "test-secret",
		ExamCheckIntervalMinutes: 15,
	}

	app := fiber.New()
	examRoutes.SetupExamRoutes(app)
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) (*models.User, string) {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "not-used-here",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return &user, token
}

func getPendingAnswers(t *testing.T, app *fiber.App, examID uint, token string) (*http.Response, []map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/exams/%d/pending-answers", examID), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed.Data
}

func TestGetPendingAnswers(t *testing.T) {
	app, db := setupTestApp(t)

	professor, profToken := createUser(t, db, "prof", models.RoleProfessor)
	student, _ := createUser(t, db, "student", models.RoleStudent)
	other, _ := createUser(t, db, "other", models.RoleStudent)

	now := time.Now().UTC()
	exam := models.Exam{
		Title:           "Philosophy Final",
		DurationMinutes: 60,
		StartTime:       now.Add(-time.Hour),
		EndTime:         now.Add(time.Hour),
		CreatedBy:       professor.ID,
		Status:          models.ExamPublished,
	}
	require.NoError(t, db.Create(&exam).Error)

	essay := models.Question{
		CreatedBy:    professor.ID,
		QuestionText: "Discuss the categorical imperative.",
		QuestionType: models.Essay,
	}
	require.NoError(t, db.Create(&essay).Error)
	objective := models.Question{
		CreatedBy:    professor.ID,
		QuestionText: "Kant wrote in German.",
		QuestionType: models.TrueFalse,
		Alternatives: []models.Alternative{
			{AlternativeText: "True", IsCorrect: true, OrderNumber: 1},
			{AlternativeText: "False", IsCorrect: false, OrderNumber: 2},
		},
	}
	require.NoError(t, db.Create(&objective).Error)
	for i, q := range []uint{essay.ID, objective.ID} {
		require.NoError(t, db.Create(&models.ExamQuestion{
			ExamID: exam.ID, QuestionID: q, Points: 5, OrderNumber: i + 1,
		}).Error)
	}

	// A live attempt whose answers are ungraded but not pending.
	start := now.Add(-10 * time.Minute)
	inProgress := models.ExamEnrollment{
		ExamID: exam.ID, StudentID: other.ID,
		Status: models.EnrollmentInProgress, StartTime: &start,
	}
	require.NoError(t, db.Create(&inProgress).Error)
	require.NoError(t, db.Create(&models.Answer{
		EnrollmentID: inProgress.ID, QuestionID: objective.ID,
		SelectedAlternatives: []byte(fmt.Sprintf("[%d]", objective.Alternatives[0].ID)),
	}).Error)

	// A completed attempt with one answer per correction state.
	completed := models.ExamEnrollment{
		ExamID: exam.ID, StudentID: student.ID,
		Status: models.EnrollmentCompleted, StartTime: &start, CompletedAt: &now,
	}
	require.NoError(t, db.Create(&completed).Error)

	pendingEssay := models.Answer{
		EnrollmentID: completed.ID, QuestionID: essay.ID,
		AnswerText: "An essay.", CorrectionMethod: models.CorrectionPending,
	}
	require.NoError(t, db.Create(&pendingEssay).Error)

	graded := 5.0
	require.NoError(t, db.Create(&models.Answer{
		EnrollmentID: completed.ID, QuestionID: objective.ID,
		PointsEarned: &graded, CorrectionMethod: models.CorrectionAuto,
	}).Error)

	resp, data := getPendingAnswers(t, app, exam.ID, profToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Only the pending essay of the completed attempt is queued. The
	// in-progress objective answer and the auto-graded one are not.
	require.Len(t, data, 1)
	assert.EqualValues(t, pendingEssay.ID, data[0]["ID"].(float64))
	assert.EqualValues(t, essay.ID, data[0]["question_id"].(float64))
}

func TestGetPendingAnswersUnknownMethodReadsAsPending(t *testing.T) {
	app, db := setupTestApp(t)

	professor, profToken := createUser(t, db, "prof", models.RoleProfessor)
	student, _ := createUser(t, db, "student", models.RoleStudent)

	now := time.Now().UTC()
	exam := models.Exam{
		Title:           "Imported Exam",
		DurationMinutes: 60,
		StartTime:       now.Add(-time.Hour),
		EndTime:         now.Add(time.Hour),
		CreatedBy:       professor.ID,
		Status:          models.ExamFinished,
	}
	require.NoError(t, db.Create(&exam).Error)

	essay := models.Question{
		CreatedBy:    professor.ID,
		QuestionText: "Essay question.",
		QuestionType: models.Essay,
	}
	require.NoError(t, db.Create(&essay).Error)
	require.NoError(t, db.Create(&models.ExamQuestion{
		ExamID: exam.ID, QuestionID: essay.ID, Points: 10, OrderNumber: 1,
	}).Error)

	completed := models.ExamEnrollment{
		ExamID: exam.ID, StudentID: student.ID,
		Status: models.EnrollmentCompleted, CompletedAt: &now,
	}
	require.NoError(t, db.Create(&completed).Error)

	// Rows imported from elsewhere may carry method values outside the
	// known set; those read as pending.
	require.NoError(t, db.Create(&models.Answer{
		EnrollmentID: completed.ID, QuestionID: essay.ID,
		AnswerText: "Imported essay.", CorrectionMethod: "imported",
	}).Error)

	manual := 7.0
	require.NoError(t, db.Create(&models.Answer{
		EnrollmentID: completed.ID, QuestionID: essay.ID + 1000,
		PointsEarned: &manual, CorrectionMethod: models.CorrectionManual,
	}).Error)

	resp, data := getPendingAnswers(t, app, exam.ID, profToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, data, 1)
	assert.Equal(t, "imported", data[0]["correction_method"])
}

func TestGetPendingAnswersAccess(t *testing.T) {
	app, db := setupTestApp(t)

	professor, _ := createUser(t, db, "prof", models.RoleProfessor)
	_, otherProfToken := createUser(t, db, "rival", models.RoleProfessor)

	now := time.Now().UTC()
	exam := models.Exam{
		Title:           "Guarded Exam",
		DurationMinutes: 60,
		StartTime:       now.Add(-time.Hour),
		EndTime:         now.Add(time.Hour),
		CreatedBy:       professor.ID,
		Status:          models.ExamPublished,
	}
	require.NoError(t, db.Create(&exam).Error)

	resp, _ := getPendingAnswers(t, app, exam.ID, otherProfToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
