package grading

import (
	"context"
	"testing"
	"time"

	"examly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorrectEmptySelector(t *testing.T) {
	db := openGradingDb(t)
	_, err := Recorrect(context.Background(), db, nil, Selector{}, false)
	assert.ErrorIs(t, err, ErrEmptySelector)
}

func TestRecorrectSkipsInProgressEnrollments(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	startEnrollment(t, db, f.exam.ID, 42)

	count, err := Recorrect(context.Background(), db, nil, Selector{ExamID: f.exam.ID}, false)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecorrectAfterAlternativeFix(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	enrollment := startEnrollment(t, db, f.exam.ID, 42)

	// Student picks what is currently marked wrong.
	saveAnswer(t, db, enrollment.ID, f.single.ID, "", selJSON(t, f.singleWrong))

	got, _, err := FinishEnrollment(context.Background(), db, nil, enrollment.ID, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 0.0, got.TotalPoints)

	// Instructor fixes the answer key, then recorrects the exam.
	require.NoError(t, db.Model(&models.Alternative{}).Where("id = ?", f.singleCorrect).Update("is_correct", false).Error)
	require.NoError(t, db.Model(&models.Alternative{}).Where("id = ?", f.singleWrong).Update("is_correct", true).Error)

	count, err := Recorrect(context.Background(), db, nil, Selector{ExamID: f.exam.ID}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var updated models.ExamEnrollment
	require.NoError(t, db.First(&updated, enrollment.ID).Error)
	assert.Equal(t, 2.0, updated.TotalPoints)
	assert.Equal(t, 20.0, updated.MaxPoints)
	assert.Equal(t, 10.0, updated.Percentage)
}

func TestRecorrectIsIdempotent(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	enrollment := startEnrollment(t, db, f.exam.ID, 42)

	saveAnswer(t, db, enrollment.ID, f.single.ID, "", selJSON(t, f.singleCorrect))
	saveAnswer(t, db, enrollment.ID, f.boolean.ID, "", selJSON(t, f.boolCorrect))

	_, _, err := FinishEnrollment(context.Background(), db, nil, enrollment.ID, time.Now().UTC())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := Recorrect(context.Background(), db, nil, Selector{EnrollmentID: enrollment.ID}, false)
		require.NoError(t, err)
	}

	var updated models.ExamEnrollment
	require.NoError(t, db.First(&updated, enrollment.ID).Error)
	assert.Equal(t, 4.0, updated.TotalPoints)
	assert.Equal(t, 20.0, updated.MaxPoints)
	assert.Equal(t, 20.0, updated.Percentage)
}

func TestRecorrectPreservesManualGrades(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	enrollment := startEnrollment(t, db, f.exam.ID, 42)

	saveAnswer(t, db, enrollment.ID, f.essay.ID, "A fine essay.", nil)

	_, _, err := FinishEnrollment(context.Background(), db, nil, enrollment.ID, time.Now().UTC())
	require.NoError(t, err)

	var essayAnswer models.Answer
	require.NoError(t, db.Where("enrollment_id = ? AND question_id = ?", enrollment.ID, f.essay.ID).First(&essayAnswer).Error)

	updated, err := ApplyManualGrade(db, essayAnswer.ID, 7.5, "Good but incomplete.")
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.TotalPoints)

	// Recorrection with essays enabled and a working oracle must not
	// overwrite the human grade.
	_, err = Recorrect(context.Background(), db, &stubProvider{score: 100}, Selector{EnrollmentID: enrollment.ID}, true)
	require.NoError(t, err)

	require.NoError(t, db.First(&essayAnswer, essayAnswer.ID).Error)
	require.NotNil(t, essayAnswer.PointsEarned)
	assert.Equal(t, 7.5, *essayAnswer.PointsEarned)
	assert.Equal(t, models.CorrectionManual, essayAnswer.CorrectionMethod)
	assert.Equal(t, "Good but incomplete.", essayAnswer.Feedback)
}

func TestRecorrectUnknownMethodNotPinned(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	enrollment := startEnrollment(t, db, f.exam.ID, 42)

	saveAnswer(t, db, enrollment.ID, f.essay.ID, "Essay text.", nil)

	_, _, err := FinishEnrollment(context.Background(), db, &stubProvider{score: 50}, enrollment.ID, time.Now().UTC())
	require.NoError(t, err)

	// A method value outside the known set reads as pending, so the
	// answer is re-graded like any other unpinned essay.
	require.NoError(t, db.Model(&models.Answer{}).
		Where("enrollment_id = ? AND question_id = ?", enrollment.ID, f.essay.ID).
		Update("correction_method", "imported").Error)

	_, err = Recorrect(context.Background(), db, &stubProvider{score: 85}, Selector{EnrollmentID: enrollment.ID}, true)
	require.NoError(t, err)

	var essayAnswer models.Answer
	require.NoError(t, db.Where("enrollment_id = ? AND question_id = ?", enrollment.ID, f.essay.ID).First(&essayAnswer).Error)
	require.NotNil(t, essayAnswer.PointsEarned)
	assert.Equal(t, 9.25, *essayAnswer.PointsEarned)
	assert.Equal(t, models.CorrectionAuto, essayAnswer.CorrectionMethod)
}

func TestRecorrectEssayStoredSimilarityFallback(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	enrollment := startEnrollment(t, db, f.exam.ID, 42)

	saveAnswer(t, db, enrollment.ID, f.essay.ID, "Essay text.", nil)

	// First pass grades through a working oracle at 85.
	_, _, err := FinishEnrollment(context.Background(), db, &stubProvider{score: 85}, enrollment.ID, time.Now().UTC())
	require.NoError(t, err)

	// Oracle down during recorrection: the stored similarity keeps the
	// grade instead of discarding it.
	_, err = Recorrect(context.Background(), db, &stubProvider{err: ErrOracleUnavailable}, Selector{EnrollmentID: enrollment.ID}, true)
	require.NoError(t, err)

	var essayAnswer models.Answer
	require.NoError(t, db.Where("enrollment_id = ? AND question_id = ?", enrollment.ID, f.essay.ID).First(&essayAnswer).Error)
	require.NotNil(t, essayAnswer.PointsEarned)
	assert.Equal(t, 9.25, *essayAnswer.PointsEarned)
	assert.Equal(t, models.CorrectionAuto, essayAnswer.CorrectionMethod)
}

func TestRecorrectEssayNoSimilarityDegradesToPending(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	enrollment := startEnrollment(t, db, f.exam.ID, 42)

	saveAnswer(t, db, enrollment.ID, f.essay.ID, "Essay text.", nil)

	// Graded pending on finish (no oracle), then recorrected while the
	// oracle is still down and no similarity was ever stored.
	_, _, err := FinishEnrollment(context.Background(), db, nil, enrollment.ID, time.Now().UTC())
	require.NoError(t, err)

	_, err = Recorrect(context.Background(), db, nil, Selector{EnrollmentID: enrollment.ID}, true)
	require.NoError(t, err)

	var essayAnswer models.Answer
	require.NoError(t, db.Where("enrollment_id = ? AND question_id = ?", enrollment.ID, f.essay.ID).First(&essayAnswer).Error)
	assert.Nil(t, essayAnswer.PointsEarned)
	assert.Equal(t, models.CorrectionPending, essayAnswer.CorrectionMethod)
}

func TestRecorrectEssaysOnlyWhenRequested(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	enrollment := startEnrollment(t, db, f.exam.ID, 42)

	saveAnswer(t, db, enrollment.ID, f.essay.ID, "Essay text.", nil)

	_, _, err := FinishEnrollment(context.Background(), db, &stubProvider{score: 85}, enrollment.ID, time.Now().UTC())
	require.NoError(t, err)

	// recorrectEssays=false leaves the essay grade alone even with a
	// different oracle verdict available.
	oracle := &stubProvider{score: 20}
	_, err = Recorrect(context.Background(), db, oracle, Selector{EnrollmentID: enrollment.ID}, false)
	require.NoError(t, err)
	assert.Zero(t, oracle.calls)

	var essayAnswer models.Answer
	require.NoError(t, db.Where("enrollment_id = ? AND question_id = ?", enrollment.ID, f.essay.ID).First(&essayAnswer).Error)
	require.NotNil(t, essayAnswer.PointsEarned)
	assert.Equal(t, 9.25, *essayAnswer.PointsEarned)
}

func TestRecorrectSelectorByStudent(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)

	first := startEnrollment(t, db, f.exam.ID, 42)
	second := startEnrollment(t, db, f.exam.ID, 43)
	for _, e := range []*models.ExamEnrollment{first, second} {
		_, _, err := FinishEnrollment(context.Background(), db, nil, e.ID, time.Now().UTC())
		require.NoError(t, err)
	}

	count, err := Recorrect(context.Background(), db, nil, Selector{ExamID: f.exam.ID, StudentID: 42}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyManualGrade(t *testing.T) {
	db := openGradingDb(t)
	f := seedExamFixture(t, db)
	enrollment := startEnrollment(t, db, f.exam.ID, 42)

	saveAnswer(t, db, enrollment.ID, f.essay.ID, "Essay text.", nil)
	_, _, err := FinishEnrollment(context.Background(), db, nil, enrollment.ID, time.Now().UTC())
	require.NoError(t, err)

	var essayAnswer models.Answer
	require.NoError(t, db.Where("enrollment_id = ? AND question_id = ?", enrollment.ID, f.essay.ID).First(&essayAnswer).Error)

	t.Run("rejects points over the question maximum", func(t *testing.T) {
		_, err := ApplyManualGrade(db, essayAnswer.ID, 11, "")
		assert.Error(t, err)
	})

	t.Run("rejects negative points", func(t *testing.T) {
		_, err := ApplyManualGrade(db, essayAnswer.ID, -1, "")
		assert.Error(t, err)
	})

	t.Run("grades and rebuilds totals", func(t *testing.T) {
		updated, err := ApplyManualGrade(db, essayAnswer.ID, 8, "Well argued.")
		require.NoError(t, err)
		assert.Equal(t, 8.0, updated.TotalPoints)
		assert.Equal(t, 20.0, updated.MaxPoints)
		assert.Equal(t, 40.0, updated.Percentage)

		require.NoError(t, db.First(&essayAnswer, essayAnswer.ID).Error)
		assert.Equal(t, models.CorrectionManual, essayAnswer.CorrectionMethod)
	})

	t.Run("missing answer", func(t *testing.T) {
		_, err := ApplyManualGrade(db, 9999, 1, "")
		assert.Error(t, err)
	})
}
