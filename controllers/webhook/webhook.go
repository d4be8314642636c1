package webhookController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// CreateEndpoint registers a webhook receiver for the school. The signing
// secret is returned once here and never serialized again.
func CreateEndpoint(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	reqData, ok := c.Locals("validatedWebhook").(*struct {
		URL    string `json:"url" validate:"required,url"`
		Secret string `json:"secret" validate:"required,min=16"`
		Events string `json:"events"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	endpoint := models.WebhookEndpoint{
		SchoolID: schoolID,
		URL:      reqData.URL,
		Secret:   reqData.Secret,
		Events:   reqData.Events,
		IsActive: true,
	}
	if err := database.Database.Db.Create(&endpoint).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create endpoint!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Webhook endpoint created!", fiber.Map{
		"endpoint": endpoint,
		"secret":   endpoint.Secret,
	})
}

func ListEndpoints(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	var endpoints []models.WebhookEndpoint
	database.Database.Db.Where("school_id = ? AND is_deleted = ?", schoolID, false).
		Order("created_at asc").Find(&endpoints)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Endpoints fetched successfully!", endpoints)
}

func UpdateEndpoint(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	endpointID := c.Locals("endpointID").(int)

	var endpoint models.WebhookEndpoint
	err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?",
		endpointID, schoolID, false).First(&endpoint).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Endpoint not found!", nil)
	}

	reqData, ok := c.Locals("validatedWebhookUpdate").(*struct {
		URL      string  `json:"url" validate:"omitempty,url"`
		Secret   string  `json:"secret" validate:"omitempty,min=16"`
		Events   *string `json:"events"`
		IsActive *bool   `json:"is_active"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.URL != "" {
		endpoint.URL = reqData.URL
	}
	if reqData.Secret != "" {
		endpoint.Secret = reqData.Secret
	}
	if reqData.Events != nil {
		endpoint.Events = *reqData.Events
	}
	if reqData.IsActive != nil {
		endpoint.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Save(&endpoint).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update endpoint!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Endpoint updated successfully!", endpoint)
}

func DeleteEndpoint(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	endpointID := c.Locals("endpointID").(int)

	var endpoint models.WebhookEndpoint
	err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?",
		endpointID, schoolID, false).First(&endpoint).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Endpoint not found!", nil)
	}

	endpoint.IsDeleted = true
	endpoint.IsActive = false
	if err := database.Database.Db.Save(&endpoint).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete endpoint!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Endpoint deleted successfully!", nil)
}

// ListDeliveries shows the delivery log for one endpoint, newest first.
func ListDeliveries(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	endpointID := c.Locals("endpointID").(int)

	var endpoint models.WebhookEndpoint
	err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?",
		endpointID, schoolID, false).First(&endpoint).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Endpoint not found!", nil)
	}

	var deliveries []models.WebhookDelivery
	database.Database.Db.Where("endpoint_id = ? AND is_deleted = ?", endpoint.ID, false).
		Order("created_at desc").Limit(100).Find(&deliveries)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Deliveries fetched successfully!", deliveries)
}

// RedeliverDelivery resets a delivery for an immediate fresh attempt,
// regardless of its current status or attempt count.
func RedeliverDelivery(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	deliveryID := c.Locals("deliveryID").(int)

	var delivery models.WebhookDelivery
	err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?",
		deliveryID, schoolID, false).First(&delivery).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Delivery not found!", nil)
	}

	delivery.Status = models.DeliveryPending
	delivery.Attempts = 0
	delivery.NextRetryAt = nil
	delivery.LastError = ""
	if err := database.Database.Db.Save(&delivery).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to queue redelivery!", nil)
	}

	go utils.AttemptDelivery(database.Database.Db, delivery.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Redelivery queued.", delivery)
}

// TestEndpoint fires a ping event at the school's endpoints so a newly
// configured receiver can verify its signature handling.
func TestEndpoint(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	utils.DispatchEvent(database.Database.Db, schoolID, models.EventPing, map[string]interface{}{
		"message": "Teachwell webhook test",
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Test event dispatched.", nil)
}
