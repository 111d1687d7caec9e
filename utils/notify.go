package utils

import (
	"encoding/json"
	"fmt"
	"log"

	"examly/database"
	"examly/models"
)

// NotifyExamFinished fans out the post-finish notifications: the
// student learns their result is available, and the exam's instructor
// is told about essay answers awaiting manual correction. Called
// asynchronously; failures are logged, never surfaced to the attempt.
func NotifyExamFinished(enrollment models.ExamEnrollment, pendingEssays []models.Answer) {
	db := database.Database.Db

	var exam models.Exam
	if err := db.First(&exam, enrollment.ExamID).Error; err != nil {
		log.Printf("Error loading exam %d for notifications: %v", enrollment.ExamID, err)
		return
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"exam_id":       exam.ID,
		"enrollment_id": enrollment.ID,
		"total_points":  enrollment.TotalPoints,
		"max_points":    enrollment.MaxPoints,
		"percentage":    enrollment.Percentage,
	})

	notification := models.Notification{
		UserID:  enrollment.StudentID,
		Type:    models.NotificationResultAvailable,
		Title:   "Exam result available",
		Message: fmt.Sprintf("Your result for %q is available.", exam.Title),
		Data:    payload,
	}
	if err := db.Create(&notification).Error; err != nil {
		log.Printf("Error creating result notification: %v", err)
	}

	var student models.User
	if err := db.First(&student, enrollment.StudentID).Error; err == nil && student.Email != "" {
		_ = SendResultAvailableEmail(student.Email, student.Name, exam.Title,
			enrollment.TotalPoints, enrollment.MaxPoints, enrollment.Percentage)
	}

	if len(pendingEssays) == 0 {
		return
	}

	pendingPayload, _ := json.Marshal(map[string]interface{}{
		"exam_id":       exam.ID,
		"enrollment_id": enrollment.ID,
		"pending_count": len(pendingEssays),
	})
	instructorNote := models.Notification{
		UserID:   exam.CreatedBy,
		Type:     models.NotificationPendingCorrection,
		Title:    "Essay answers awaiting correction",
		Message:  fmt.Sprintf("%d essay answer(s) of %q need manual correction.", len(pendingEssays), exam.Title),
		Data:     pendingPayload,
		Priority: "high",
	}
	if err := db.Create(&instructorNote).Error; err != nil {
		log.Printf("Error creating pending-correction notification: %v", err)
	}

	var instructor models.User
	if err := db.First(&instructor, exam.CreatedBy).Error; err == nil && instructor.Email != "" {
		_ = SendPendingCorrectionEmail(instructor.Email, instructor.Name, exam.Title, len(pendingEssays))
	}
}
