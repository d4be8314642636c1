package supportRoutes

import (
	supportController "lms/controllers/support"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/support"

	"github.com/gofiber/fiber/v2"
)

// SetupSupportRoutes sets up tenant-scoped support ticket routes
func SetupSupportRoutes(app *fiber.App) {
	group := app.Group("/support", middleware.JWTMiddleware, middleware.SchoolMiddleware)

	group.Post("/tickets", validators.CreateTicket(), supportController.CreateTicket)
	group.Get("/tickets", supportController.ListTickets)
	group.Patch("/tickets/:id",
		middleware.RequireRoles(models.RoleSchoolAdmin),
		validators.TicketID(),
		validators.TicketStatus(),
		supportController.UpdateTicketStatus)
}
