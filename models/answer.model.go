package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CorrectionMethod records how an answer's points were assigned. A
// manual grade pins the answer against automated re-scoring.
type CorrectionMethod string

const (
	CorrectionAuto    CorrectionMethod = "auto"
	CorrectionManual  CorrectionMethod = "manual"
	CorrectionPending CorrectionMethod = "pending"
)

// Normalize folds any unknown stored value to pending.
func (m CorrectionMethod) Normalize() CorrectionMethod {
	switch m {
	case CorrectionAuto, CorrectionManual:
		return m
	}
	return CorrectionPending
}

type Answer struct {
	gorm.Model
	EnrollmentID uint   `json:"enrollment_id" gorm:"uniqueIndex:idx_enrollment_question;not null"`
	QuestionID   uint   `json:"question_id" gorm:"uniqueIndex:idx_enrollment_question;not null"`
	AnswerText   string `json:"answer_text"`

	// Selected alternative IDs as a JSON array. Empty or null means no
	// selection was made.
	SelectedAlternatives datatypes.JSON `json:"selected_alternatives"`

	// PointsEarned nil means "awaiting grading" and is distinct from 0.
	PointsEarned     *float64         `json:"points_earned"`
	SimilarityScore  *float64         `json:"similarity_score"`
	CorrectionMethod CorrectionMethod `json:"correction_method"`
	Feedback         string           `json:"feedback"`
}
