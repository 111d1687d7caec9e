package models

import "gorm.io/gorm"

// QuestionType is a closed set; every scoring path switches on it
// exhaustively instead of falling through on unknown strings.
type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Essay          QuestionType = "essay"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultipleChoice, TrueFalse, Essay:
		return true
	}
	return false
}

type Question struct {
	gorm.Model
	CreatedBy             uint         `json:"created_by" gorm:"index;not null"`
	QuestionText          string       `json:"question_text" gorm:"not null"`
	QuestionType          QuestionType `json:"question_type" gorm:"not null"`
	Points                float64      `json:"points" gorm:"not null;default:1"`
	Category              string       `json:"category"`
	Difficulty            string       `json:"difficulty" gorm:"default:'medium'"`
	IsPublic              bool         `json:"is_public" gorm:"default:true"`
	ExpectedAnswer        string       `json:"expected_answer"` // essay gold answer
	AutoCorrectionEnabled bool         `json:"auto_correction_enabled" gorm:"default:false"`

	Alternatives []Alternative `json:"alternatives,omitempty" gorm:"foreignKey:QuestionID"`
}

type Alternative struct {
	gorm.Model
	QuestionID      uint   `json:"question_id" gorm:"index;not null"`
	AlternativeText string `json:"alternative_text" gorm:"not null"`
	IsCorrect       bool   `json:"is_correct" gorm:"not null"`
	OrderNumber     int    `json:"order_number" gorm:"not null"`
}
