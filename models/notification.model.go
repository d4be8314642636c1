package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationAssignment  = "COURSE_ASSIGNED"
	NotificationReminder    = "COURSE_REMINDER"
	NotificationCompleted   = "COURSE_COMPLETED"
	NotificationVideoReady  = "VIDEO_READY"
	NotificationVideoFailed = "VIDEO_FAILED"
	NotificationCertificate = "CERTIFICATE_ISSUED"
	NotificationAnnounce    = "ANNOUNCEMENT"
)

type Notification struct {
	gorm.Model
	SchoolID  uint           `json:"school_id" gorm:"index;not null"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      datatypes.JSON `json:"data"` // extra payload (course id, content id, ...)
	IsRead    bool           `json:"is_read" gorm:"default:false"`
	IsDeleted bool           `gorm:"default:false"`
}
