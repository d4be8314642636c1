package notificationRoutes

import (
	notificationController "lms/controllers/notification"
	"lms/middleware"
	validators "lms/validators/notification"

	"github.com/gofiber/fiber/v2"
)

// SetupNotificationRoutes sets up the per-user notification inbox routes
func SetupNotificationRoutes(app *fiber.App) {
	group := app.Group("/notifications", middleware.JWTMiddleware)

	group.Get("/", validators.List(), notificationController.ListNotifications)
	group.Get("/unread-count", notificationController.UnreadCount)
	group.Post("/read-all", notificationController.MarkAllRead)
	group.Post("/:id/read", validators.NotificationID(), notificationController.MarkRead)
}
