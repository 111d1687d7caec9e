package models

import "gorm.io/gorm"

type Class struct {
	gorm.Model
	Name         string `json:"name" gorm:"not null"`
	Description  string `json:"description"`
	InstructorID uint   `json:"instructor_id" gorm:"index;not null"`
	Schedule     string `json:"schedule"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
}

// Class enrollment statuses. Approval itself is handled by the admin
// surface; grading only cares that approved rows exist.
const (
	ClassEnrollmentPending  = "pending"
	ClassEnrollmentApproved = "approved"
	ClassEnrollmentRejected = "rejected"
)

type ClassEnrollment struct {
	gorm.Model
	ClassID   uint   `json:"class_id" gorm:"index;not null"`
	StudentID uint   `json:"student_id" gorm:"index;not null"`
	Status    string `json:"status" gorm:"default:'pending'"`
}
