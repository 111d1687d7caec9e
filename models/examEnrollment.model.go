package models

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus covers a student attempt's lifecycle. "not enrolled"
// is the absence of a row, not a status value.
type EnrollmentStatus string

const (
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
)

type ExamEnrollment struct {
	gorm.Model
	ExamID    uint             `json:"exam_id" gorm:"uniqueIndex:idx_exam_student;not null"`
	StudentID uint             `json:"student_id" gorm:"uniqueIndex:idx_exam_student;not null"`
	Status    EnrollmentStatus `json:"status" gorm:"default:'in_progress';index"`
	StartTime *time.Time       `json:"start_time"`
	EndTime   *time.Time       `json:"end_time"`

	// Result fields, populated on completion only.
	TotalPoints float64    `json:"total_points" gorm:"default:0"`
	MaxPoints   float64    `json:"max_points" gorm:"default:0"`
	Percentage  float64    `json:"percentage" gorm:"default:0"`
	CompletedAt *time.Time `json:"completed_at"`
}
