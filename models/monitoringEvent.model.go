package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MonitoringEvent struct {
	gorm.Model
	EnrollmentID uint           `json:"enrollment_id" gorm:"index;not null"`
	EventType    string         `json:"event_type" gorm:"not null"`
	EventData    datatypes.JSON `json:"event_data"`
}
