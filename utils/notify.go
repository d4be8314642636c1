package utils

import (
	"encoding/json"
	"log"

	"lms/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PushNotification stores an in-app notification for one user. Failures are
// logged and swallowed; notifications are best-effort side effects.
func PushNotification(db *gorm.DB, schoolID, userID uint, notifType, title, body string, data map[string]interface{}) {
	if userID == 0 {
		return
	}

	var payload datatypes.JSON
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			log.Printf("[NOTIFY] Error marshaling notification data: %v", err)
		} else {
			payload = datatypes.JSON(raw)
		}
	}

	notification := models.Notification{
		SchoolID: schoolID,
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Body:     body,
		Data:     payload,
	}

	if err := db.Create(&notification).Error; err != nil {
		log.Printf("[NOTIFY] Error creating notification for user %d: %v", userID, err)
	}
}
