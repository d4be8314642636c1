package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Webhook events
const (
	EventTeacherAssigned = "teacher.assigned"
	EventCourseCompleted = "course.completed"
	EventVideoReady      = "video.ready"
	EventVideoFailed     = "video.failed"
	EventPing            = "ping"
)

// Delivery status
const (
	DeliveryPending   = "PENDING"
	DeliveryDelivered = "DELIVERED"
	DeliveryFailed    = "FAILED"
)

// WebhookEndpoint is a school-configured receiver for event callbacks.
// Events is a comma-separated list of subscribed event names; empty means all.
type WebhookEndpoint struct {
	gorm.Model
	SchoolID  uint   `json:"school_id" gorm:"index;not null"`
	URL       string `json:"url" gorm:"not null"`
	Secret    string `json:"-" gorm:"not null"` // HMAC signing key, never serialized
	Events    string `json:"events"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	IsDeleted bool   `gorm:"default:false"`
}

// WebhookDelivery records one delivery attempt chain for one event to one
// endpoint. Retries update the same row until DELIVERED or max attempts.
type WebhookDelivery struct {
	gorm.Model
	EndpointID     uint           `json:"endpoint_id" gorm:"index;not null"`
	SchoolID       uint           `json:"school_id" gorm:"index;not null"`
	DeliveryUID    string         `json:"delivery_uid" gorm:"unique;not null"`
	Event          string         `json:"event"`
	Payload        datatypes.JSON `json:"payload"`
	Status         string         `json:"status" gorm:"default:'PENDING'"` // PENDING, DELIVERED, FAILED
	Attempts       int            `json:"attempts" gorm:"default:0"`
	NextRetryAt    *time.Time     `json:"next_retry_at"`
	ResponseStatus int            `json:"response_status"`
	ResponseBody   string         `json:"response_body" gorm:"type:text"`
	LastError      string         `json:"last_error"`
	IsDeleted      bool           `gorm:"default:false"`
}
