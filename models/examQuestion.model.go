package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExamQuestion binds a bank question to an exam with an exam-specific
// points value and a content snapshot taken at attach time, so later
// edits to the bank question never change what the student was shown.
type ExamQuestion struct {
	gorm.Model
	ExamID           uint           `json:"exam_id" gorm:"uniqueIndex:idx_exam_question;not null"`
	QuestionID       uint           `json:"question_id" gorm:"uniqueIndex:idx_exam_question;not null"`
	Points           float64        `json:"points" gorm:"not null"`
	OrderNumber      int            `json:"order_number" gorm:"not null"`
	QuestionSnapshot datatypes.JSON `json:"question_snapshot"`
}

// SnapshotAlternative is the frozen view of an alternative inside
// ExamQuestion.QuestionSnapshot.
type SnapshotAlternative struct {
	ID              uint   `json:"id"`
	AlternativeText string `json:"alternative_text"`
	OrderNumber     int    `json:"order_number"`
}

// QuestionSnapshotData is the JSON payload stored in QuestionSnapshot.
type QuestionSnapshotData struct {
	QuestionText string                `json:"question_text"`
	QuestionType QuestionType          `json:"question_type"`
	Alternatives []SnapshotAlternative `json:"alternatives,omitempty"`
}
