package webhookRoutes

import (
	webhookController "lms/controllers/webhook"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/webhook"

	"github.com/gofiber/fiber/v2"
)

// SetupWebhookRoutes sets up webhook endpoint management for school admins
func SetupWebhookRoutes(app *fiber.App) {
	group := app.Group("/webhooks",
		middleware.JWTMiddleware,
		middleware.SchoolMiddleware,
		middleware.RequireRoles(models.RoleSchoolAdmin))

	group.Post("/", validators.CreateEndpoint(), webhookController.CreateEndpoint)
	group.Get("/", webhookController.ListEndpoints)
	group.Post("/test", webhookController.TestEndpoint)
	group.Patch("/:id", validators.EndpointID(), validators.UpdateEndpoint(), webhookController.UpdateEndpoint)
	group.Delete("/:id", validators.EndpointID(), webhookController.DeleteEndpoint)
	group.Get("/:id/deliveries", validators.EndpointID(), webhookController.ListDeliveries)
	group.Post("/deliveries/:deliveryId/redeliver", validators.DeliveryID(), webhookController.RedeliverDelivery)
}
