package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SignWebhookPayload computes the hex HMAC-SHA256 of the body with the
// endpoint secret. Receivers verify it against the X-Teachwell-Signature
// header.
func SignWebhookPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// endpointSubscribed reports whether the endpoint wants the event. An empty
// Events list means all events.
func endpointSubscribed(endpoint models.WebhookEndpoint, event string) bool {
	if strings.TrimSpace(endpoint.Events) == "" {
		return true
	}
	for _, subscribed := range strings.Split(endpoint.Events, ",") {
		if strings.TrimSpace(subscribed) == event {
			return true
		}
	}
	return false
}

// DispatchEvent fans an event out to every active endpoint of the school
// that subscribes to it. One delivery row is created per endpoint and the
// first attempt fires immediately in the background; the retry scheduler
// picks up whatever fails.
func DispatchEvent(db *gorm.DB, schoolID uint, event string, data map[string]interface{}) {
	var endpoints []models.WebhookEndpoint
	if err := db.Where("school_id = ? AND is_active = ? AND is_deleted = ?", schoolID, true, false).
		Find(&endpoints).Error; err != nil {
		log.Printf("[WEBHOOK] Error fetching endpoints for school %d: %v", schoolID, err)
		return
	}

	for _, endpoint := range endpoints {
		if !endpointSubscribed(endpoint, event) {
			continue
		}

		deliveryUID := uuid.NewString()
		body, err := json.Marshal(map[string]interface{}{
			"event":        event,
			"delivery_uid": deliveryUID,
			"created_at":   time.Now().UTC().Format(time.RFC3339),
			"data":         data,
		})
		if err != nil {
			log.Printf("[WEBHOOK] Error marshaling %s payload: %v", event, err)
			continue
		}

		delivery := models.WebhookDelivery{
			EndpointID:  endpoint.ID,
			SchoolID:    schoolID,
			DeliveryUID: deliveryUID,
			Event:       event,
			Payload:     datatypes.JSON(body),
			Status:      models.DeliveryPending,
		}
		if err := db.Create(&delivery).Error; err != nil {
			log.Printf("[WEBHOOK] Error creating delivery for endpoint %d: %v", endpoint.ID, err)
			continue
		}

		go AttemptDelivery(db, delivery.ID)
	}
}

// AttemptDelivery posts one pending delivery to its endpoint and records the
// outcome. Non-2xx responses and transport errors schedule a retry with
// exponential backoff until the attempt cap, then the delivery is FAILED.
func AttemptDelivery(db *gorm.DB, deliveryID uint) {
	var delivery models.WebhookDelivery
	if err := db.Where("id = ? AND is_deleted = ?", deliveryID, false).First(&delivery).Error; err != nil {
		log.Printf("[WEBHOOK] Delivery %d not found: %v", deliveryID, err)
		return
	}
	if delivery.Status == models.DeliveryDelivered {
		return
	}

	var endpoint models.WebhookEndpoint
	if err := db.Where("id = ?", delivery.EndpointID).First(&endpoint).Error; err != nil {
		log.Printf("[WEBHOOK] Endpoint %d not found for delivery %d", delivery.EndpointID, deliveryID)
		return
	}

	timeout := 10 * time.Second
	maxAttempts := 5
	if config.AppConfig != nil {
		timeout = time.Duration(config.AppConfig.WebhookTimeoutSeconds) * time.Second
		maxAttempts = config.AppConfig.WebhookMaxAttempts
	}

	body := []byte(delivery.Payload)

	client := resty.New().SetTimeout(timeout)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Teachwell-Event", delivery.Event).
		SetHeader("X-Teachwell-Delivery", delivery.DeliveryUID).
		SetHeader("X-Teachwell-Signature", SignWebhookPayload(endpoint.Secret, body)).
		SetBody(body).
		Post(endpoint.URL)

	delivery.Attempts++

	if err == nil && resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		delivery.Status = models.DeliveryDelivered
		delivery.ResponseStatus = resp.StatusCode()
		delivery.ResponseBody = truncateBody(resp.String())
		delivery.LastError = ""
		delivery.NextRetryAt = nil
		log.Printf("[WEBHOOK] Delivered %s to %s (attempt %d)", delivery.Event, endpoint.URL, delivery.Attempts)
	} else {
		if err != nil {
			delivery.LastError = err.Error()
		} else {
			delivery.ResponseStatus = resp.StatusCode()
			delivery.ResponseBody = truncateBody(resp.String())
			delivery.LastError = "endpoint returned " + resp.Status()
		}

		if delivery.Attempts >= maxAttempts {
			delivery.Status = models.DeliveryFailed
			delivery.NextRetryAt = nil
			log.Printf("[WEBHOOK] Delivery %s to %s FAILED after %d attempts: %s",
				delivery.Event, endpoint.URL, delivery.Attempts, delivery.LastError)
		} else {
			// Backoff doubles per attempt: 2, 4, 8, 16 minutes
			retryAt := time.Now().Add(time.Duration(1<<delivery.Attempts) * time.Minute)
			delivery.Status = models.DeliveryPending
			delivery.NextRetryAt = &retryAt
			log.Printf("[WEBHOOK] Delivery %s to %s attempt %d failed, retrying at %s",
				delivery.Event, endpoint.URL, delivery.Attempts, retryAt.Format(time.RFC3339))
		}
	}

	if err := db.Save(&delivery).Error; err != nil {
		log.Printf("[WEBHOOK] Error saving delivery %d: %v", delivery.ID, err)
	}
}

func truncateBody(body string) string {
	if len(body) > 2000 {
		return body[:2000]
	}
	return body
}

// RetryPendingDeliveries re-attempts every pending delivery whose retry time
// has passed
func RetryPendingDeliveries(db *gorm.DB) {
	var due []models.WebhookDelivery
	if err := db.Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ? AND is_deleted = ?",
		models.DeliveryPending, time.Now(), false).Find(&due).Error; err != nil {
		log.Printf("[WEBHOOK-SCHEDULER] Error fetching due deliveries: %v", err)
		return
	}

	if len(due) == 0 {
		return
	}
	log.Printf("[WEBHOOK-SCHEDULER] Retrying %d due deliveries", len(due))

	for _, delivery := range due {
		AttemptDelivery(db, delivery.ID)
	}
}

// InitializeWebhookScheduler starts the periodic delivery retry loop
func InitializeWebhookScheduler() {
	log.Println("[WEBHOOK-SCHEDULER] Initializing webhook retry scheduler...")

	c := cron.New()

	// Every minute, flush deliveries whose backoff has elapsed
	c.AddFunc("* * * * *", func() {
		RetryPendingDeliveries(database.Database.Db)
	})

	c.Start()
	log.Println("[WEBHOOK-SCHEDULER] Webhook retry scheduler started - runs every minute")
}
