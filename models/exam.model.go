package models

import (
	"time"

	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamPublished ExamStatus = "published"
	ExamFinished  ExamStatus = "finished"
)

type Exam struct {
	gorm.Model
	Title           string     `json:"title" gorm:"not null"`
	Description     string     `json:"description"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null"`
	StartTime       time.Time  `json:"start_time" gorm:"not null"`
	EndTime         time.Time  `json:"end_time" gorm:"not null;index"`
	CreatedBy       uint       `json:"created_by" gorm:"index"`
	ClassID         uint       `json:"class_id" gorm:"index"`
	Status          ExamStatus `json:"status" gorm:"default:'draft';index"`
}
