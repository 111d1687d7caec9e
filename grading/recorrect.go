package grading

import (
	"context"
	"errors"
	"fmt"
	"log"

	"examly/models"

	"gorm.io/gorm"
)

// Selector identifies which completed enrollments a recorrection pass
// covers. Exactly one of the fields may be combined with StudentID;
// zero values are ignored.
type Selector struct {
	ExamID       uint
	StudentID    uint
	EnrollmentID uint
}

// ErrEmptySelector is returned when a recorrection is requested with no
// selector at all.
var ErrEmptySelector = errors.New("recorrect selector must name an exam, student, or enrollment")

// Recorrect replays the scoring rules over the persisted answers of
// every matched, completed enrollment and rebuilds its totals from
// scratch (never by delta). Objective answers are always fully
// re-derived; manually graded essays are never touched. Essays graded
// auto or pending are re-run through the oracle only when
// recorrectEssays is set, falling back to the stored similarity score
// through the same curve when the oracle fails, and degrading to
// pending when no similarity is available at all.
//
// Safe to call repeatedly: totals always derive from current answer
// rows, so overlapping runs converge on the same result.
func Recorrect(ctx context.Context, db *gorm.DB, provider SimilarityProvider, sel Selector, recorrectEssays bool) (int, error) {
	if sel.ExamID == 0 && sel.StudentID == 0 && sel.EnrollmentID == 0 {
		return 0, ErrEmptySelector
	}

	query := db.Where("status = ?", models.EnrollmentCompleted)
	if sel.EnrollmentID != 0 {
		query = query.Where("id = ?", sel.EnrollmentID)
	}
	if sel.ExamID != 0 {
		query = query.Where("exam_id = ?", sel.ExamID)
	}
	if sel.StudentID != 0 {
		query = query.Where("student_id = ?", sel.StudentID)
	}

	var enrollments []models.ExamEnrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return 0, err
	}

	count := 0
	for i := range enrollments {
		if err := recorrectEnrollment(ctx, db, provider, &enrollments[i], recorrectEssays); err != nil {
			return count, fmt.Errorf("recorrect enrollment %d: %w", enrollments[i].ID, err)
		}
		count++
	}
	return count, nil
}

func recorrectEnrollment(ctx context.Context, db *gorm.DB, provider SimilarityProvider, enrollment *models.ExamEnrollment, recorrectEssays bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var answers []models.Answer
		if err := tx.Where("enrollment_id = ?", enrollment.ID).Find(&answers).Error; err != nil {
			return err
		}

		var examQuestions []models.ExamQuestion
		if err := tx.Where("exam_id = ?", enrollment.ExamID).Find(&examQuestions).Error; err != nil {
			return err
		}
		pointsByQuestion := make(map[uint]float64, len(examQuestions))
		for _, eq := range examQuestions {
			pointsByQuestion[eq.QuestionID] = eq.Points
		}

		for i := range answers {
			answer := &answers[i]

			points, bound := pointsByQuestion[answer.QuestionID]
			if !bound {
				log.Printf("[GRADING] answer %d has no exam question binding, scoring 0", answer.ID)
				zero := 0.0
				answer.PointsEarned = &zero
				answer.CorrectionMethod = models.CorrectionAuto
				if err := tx.Save(answer).Error; err != nil {
					return err
				}
				continue
			}

			var question models.Question
			if err := tx.First(&question, answer.QuestionID).Error; err != nil {
				log.Printf("[GRADING] question %d missing, scoring answer %d as 0", answer.QuestionID, answer.ID)
				zero := 0.0
				answer.PointsEarned = &zero
				answer.CorrectionMethod = models.CorrectionAuto
				if err := tx.Save(answer).Error; err != nil {
					return err
				}
				continue
			}

			if question.QuestionType == models.Essay {
				if answer.CorrectionMethod.Normalize() == models.CorrectionManual {
					continue // pinned by a human, regardless of flags
				}
				if !recorrectEssays {
					continue
				}
				recorrectEssayAnswer(ctx, provider, answer, &question, points)
				if err := tx.Save(answer).Error; err != nil {
					return err
				}
				continue
			}

			if err := scoreObjectiveAnswer(tx, answer, question.QuestionType, points); err != nil {
				return err
			}
			if err := tx.Save(answer).Error; err != nil {
				return err
			}
		}

		return recalculateTotals(tx, enrollment)
	})
}

// recorrectEssayAnswer re-grades a non-manual essay answer. Oracle
// failure falls back to the previously stored similarity score so an
// outage never discards an existing grade.
func recorrectEssayAnswer(ctx context.Context, provider SimilarityProvider, answer *models.Answer, question *models.Question, points float64) {
	if question.AutoCorrectionEnabled && question.ExpectedAnswer != "" && answer.AnswerText != "" {
		earned, sim, err := CorrectEssay(ctx, provider, question.ExpectedAnswer, answer.AnswerText, points)
		if err == nil {
			answer.PointsEarned = earned
			answer.SimilarityScore = sim
			answer.CorrectionMethod = models.CorrectionAuto
			return
		}
		log.Printf("[GRADING] essay re-correction failed for answer %d: %v", answer.ID, err)
	}

	if answer.SimilarityScore != nil {
		earned := PointsForSimilarity(*answer.SimilarityScore, points)
		answer.PointsEarned = &earned
		answer.CorrectionMethod = models.CorrectionAuto
		return
	}

	answer.PointsEarned = nil
	answer.CorrectionMethod = models.CorrectionPending
}

// recalculateTotals rebuilds an enrollment's result fields from its
// current answer rows and the exam's question bindings. Pending answers
// (nil points) contribute nothing; max_points always covers every
// attached question.
func recalculateTotals(tx *gorm.DB, enrollment *models.ExamEnrollment) error {
	var answers []models.Answer
	if err := tx.Where("enrollment_id = ?", enrollment.ID).Find(&answers).Error; err != nil {
		return err
	}

	totalPoints := 0.0
	for _, a := range answers {
		if a.PointsEarned != nil {
			totalPoints += *a.PointsEarned
		}
	}
	totalPoints = round2(totalPoints)

	var maxPoints float64
	row := tx.Model(&models.ExamQuestion{}).
		Where("exam_id = ?", enrollment.ExamID).
		Select("COALESCE(SUM(points), 0)").
		Row()
	if err := row.Scan(&maxPoints); err != nil {
		return err
	}

	percentage := 0.0
	if maxPoints > 0 {
		percentage = round2(totalPoints / maxPoints * 100)
	}

	enrollment.TotalPoints = totalPoints
	enrollment.MaxPoints = maxPoints
	enrollment.Percentage = percentage

	return tx.Model(&models.ExamEnrollment{}).
		Where("id = ?", enrollment.ID).
		Updates(map[string]interface{}{
			"total_points": totalPoints,
			"max_points":   maxPoints,
			"percentage":   percentage,
		}).Error
}

// ApplyManualGrade sets a human-assigned grade on an answer, pins it
// against automated recorrection, and rebuilds the enrollment totals.
func ApplyManualGrade(db *gorm.DB, answerID uint, pointsEarned float64, feedback string) (*models.ExamEnrollment, error) {
	var enrollment models.ExamEnrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		var answer models.Answer
		if err := tx.First(&answer, answerID).Error; err != nil {
			return err
		}
		if err := tx.First(&enrollment, answer.EnrollmentID).Error; err != nil {
			return err
		}

		var eq models.ExamQuestion
		if err := tx.Where("exam_id = ? AND question_id = ?", enrollment.ExamID, answer.QuestionID).
			First(&eq).Error; err == nil {
			if pointsEarned > eq.Points {
				return fmt.Errorf("points %.2f exceed question maximum %.2f", pointsEarned, eq.Points)
			}
		}
		if pointsEarned < 0 {
			return errors.New("points must not be negative")
		}

		rounded := round2(pointsEarned)
		answer.PointsEarned = &rounded
		answer.CorrectionMethod = models.CorrectionManual
		answer.Feedback = feedback
		if err := tx.Save(&answer).Error; err != nil {
			return err
		}

		return recalculateTotals(tx, &enrollment)
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}
