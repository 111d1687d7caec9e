package grading

import (
	"context"
	"errors"
	"log"
	"time"

	"examly/models"

	"gorm.io/gorm"
)

// ErrNotInProgress is returned when a finish is attempted on an
// enrollment that is not in_progress. The conflict is surfaced to the
// caller, never silently corrected.
var ErrNotInProgress = errors.New("enrollment is not in progress")

// correctAlternativeIDs loads the IDs of the correct alternatives for a
// question.
func correctAlternativeIDs(tx *gorm.DB, questionID uint) ([]uint, error) {
	var alts []models.Alternative
	if err := tx.Where("question_id = ? AND is_correct = ?", questionID, true).Find(&alts).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, len(alts))
	for i, a := range alts {
		ids[i] = a.ID
	}
	return ids, nil
}

// scoreObjectiveAnswer re-derives an objective answer's points from the
// live alternatives and stamps it auto-corrected.
func scoreObjectiveAnswer(tx *gorm.DB, answer *models.Answer, qt models.QuestionType, points float64) error {
	correctIDs, err := correctAlternativeIDs(tx, answer.QuestionID)
	if err != nil {
		return err
	}
	selected := DecodeSelectedAlternatives(answer.SelectedAlternatives)
	earned := round2(ScoreSelection(qt, correctIDs, selected, points))
	answer.PointsEarned = &earned
	answer.CorrectionMethod = models.CorrectionAuto
	return nil
}

// gradeEssayAnswer runs the similarity adapter over an essay answer.
// When the question cannot be auto-corrected, or the oracle fails, the
// answer degrades to pending with no points, which excludes it from
// totals until a human grades it.
func gradeEssayAnswer(ctx context.Context, provider SimilarityProvider, answer *models.Answer, question *models.Question, points float64) {
	if !question.AutoCorrectionEnabled || question.ExpectedAnswer == "" || answer.AnswerText == "" {
		answer.PointsEarned = nil
		answer.CorrectionMethod = models.CorrectionPending
		return
	}

	earned, sim, err := CorrectEssay(ctx, provider, question.ExpectedAnswer, answer.AnswerText, points)
	if err != nil {
		log.Printf("[GRADING] essay auto-correction failed for answer %d, left pending: %v", answer.ID, err)
		answer.PointsEarned = nil
		answer.CorrectionMethod = models.CorrectionPending
		return
	}
	answer.PointsEarned = earned
	answer.SimilarityScore = sim
	answer.CorrectionMethod = models.CorrectionAuto
}

// FinishEnrollment runs the full scoring pass over one in-progress
// attempt and completes it. Every question attached to the exam is
// scored from its matching answer; a missing objective answer
// contributes zero, a missing essay answer gets a pending placeholder
// row so it can be graded manually later. Totals are computed from
// scratch: max_points always includes essay points, total_points folds
// essays in only once they are graded.
//
// The in_progress check is re-validated by the guarded status flip
// inside the same transaction, so a concurrent finish cannot score the
// attempt twice.
func FinishEnrollment(ctx context.Context, db *gorm.DB, provider SimilarityProvider, enrollmentID uint, now time.Time) (*models.ExamEnrollment, []models.Answer, error) {
	var enrollment models.ExamEnrollment
	var pendingEssays []models.Answer

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&enrollment, enrollmentID).Error; err != nil {
			return err
		}
		if enrollment.Status != models.EnrollmentInProgress {
			return ErrNotInProgress
		}

		var examQuestions []models.ExamQuestion
		if err := tx.Where("exam_id = ?", enrollment.ExamID).
			Order("order_number asc").Find(&examQuestions).Error; err != nil {
			return err
		}

		var answers []models.Answer
		if err := tx.Where("enrollment_id = ?", enrollment.ID).Find(&answers).Error; err != nil {
			return err
		}
		answerByQuestion := make(map[uint]*models.Answer, len(answers))
		for i := range answers {
			answerByQuestion[answers[i].QuestionID] = &answers[i]
		}

		totalPoints := 0.0
		maxPoints := 0.0
		covered := make(map[uint]bool, len(examQuestions))

		for _, eq := range examQuestions {
			maxPoints += eq.Points
			covered[eq.QuestionID] = true

			var question models.Question
			if err := tx.First(&question, eq.QuestionID).Error; err != nil {
				// One malformed row must not block grading the rest.
				log.Printf("[GRADING] question %d missing for exam %d, scoring 0", eq.QuestionID, enrollment.ExamID)
				if answer, ok := answerByQuestion[eq.QuestionID]; ok {
					zero := 0.0
					answer.PointsEarned = &zero
					answer.CorrectionMethod = models.CorrectionAuto
					if err := tx.Save(answer).Error; err != nil {
						return err
					}
				}
				continue
			}

			answer, answered := answerByQuestion[eq.QuestionID]

			if question.QuestionType == models.Essay {
				if !answered {
					// Placeholder so manual grading has a row to fill in.
					placeholder := models.Answer{
						EnrollmentID:     enrollment.ID,
						QuestionID:       eq.QuestionID,
						CorrectionMethod: models.CorrectionPending,
					}
					if err := tx.Create(&placeholder).Error; err != nil {
						return err
					}
					pendingEssays = append(pendingEssays, placeholder)
					continue
				}
				gradeEssayAnswer(ctx, provider, answer, &question, eq.Points)
				if err := tx.Save(answer).Error; err != nil {
					return err
				}
				if answer.PointsEarned != nil {
					totalPoints += *answer.PointsEarned
				} else {
					pendingEssays = append(pendingEssays, *answer)
				}
				continue
			}

			// Objective types. An absent answer simply contributes zero.
			if !answered {
				continue
			}
			if err := scoreObjectiveAnswer(tx, answer, question.QuestionType, eq.Points); err != nil {
				return err
			}
			if err := tx.Save(answer).Error; err != nil {
				return err
			}
			totalPoints += *answer.PointsEarned
		}

		// Answers whose question was detached from the exam: zero, log,
		// keep going.
		for i := range answers {
			if covered[answers[i].QuestionID] {
				continue
			}
			log.Printf("[GRADING] answer %d has no exam question binding, scoring 0", answers[i].ID)
			zero := 0.0
			answers[i].PointsEarned = &zero
			answers[i].CorrectionMethod = models.CorrectionAuto
			if err := tx.Save(&answers[i]).Error; err != nil {
				return err
			}
		}

		totalPoints = round2(totalPoints)
		percentage := 0.0
		if maxPoints > 0 {
			percentage = round2(totalPoints / maxPoints * 100)
		}

		res := tx.Model(&models.ExamEnrollment{}).
			Where("id = ? AND status = ?", enrollment.ID, models.EnrollmentInProgress).
			Updates(map[string]interface{}{
				"status":       models.EnrollmentCompleted,
				"end_time":     now,
				"completed_at": now,
				"total_points": totalPoints,
				"max_points":   maxPoints,
				"percentage":   percentage,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotInProgress
		}

		enrollment.Status = models.EnrollmentCompleted
		enrollment.EndTime = &now
		enrollment.CompletedAt = &now
		enrollment.TotalPoints = totalPoints
		enrollment.MaxPoints = maxPoints
		enrollment.Percentage = percentage
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &enrollment, pendingEssays, nil
}
