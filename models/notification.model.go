package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types written by the grading flow.
const (
	NotificationPendingCorrection = "pending_correction"
	NotificationResultAvailable   = "result_available"
)

type Notification struct {
	gorm.Model
	UserID   uint           `json:"user_id" gorm:"index;not null"`
	Type     string         `json:"type" gorm:"not null"`
	Title    string         `json:"title" gorm:"not null"`
	Message  string         `json:"message" gorm:"not null"`
	Data     datatypes.JSON `json:"data"`
	IsRead   bool           `json:"is_read" gorm:"default:false"`
	Priority string         `json:"priority" gorm:"default:'normal'"`
	ReadAt   *time.Time     `json:"read_at"`
}
