package supportController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

func CreateTicket(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	reqData, ok := c.Locals("validatedTicket").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Priority    string `json:"priority"`
		Category    string `json:"category"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ticket := models.SupportTicket{
		SchoolID:    schoolID,
		UserID:      userID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Status:      "open",
	}
	if reqData.Priority != "" {
		ticket.Priority = reqData.Priority
	}
	if reqData.Category != "" {
		ticket.Category = reqData.Category
	}

	if err := database.Database.Db.Create(&ticket).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create ticket!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Ticket created successfully!", ticket)
}

// ListTickets shows the user's own tickets; school admins see every ticket
// of the school.
func ListTickets(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	role, _ := c.Locals("role").(string)

	db := database.Database.Db.Where("school_id = ? AND is_deleted = ?", schoolID, false)
	if role != models.RoleSchoolAdmin && role != models.RoleSuperAdmin {
		db = db.Where("user_id = ?", userID)
	}

	var tickets []models.SupportTicket
	db.Order("created_at desc").Find(&tickets)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tickets fetched successfully!", tickets)
}

// UpdateTicketStatus lets a school admin move a ticket through its
// lifecycle and record a resolution note.
func UpdateTicketStatus(c *fiber.Ctx) error {
	schoolID, ok := c.Locals("schoolId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved!", nil)
	}

	ticketID := c.Locals("ticketID").(int)

	reqData, ok := c.Locals("validatedTicketStatus").(*struct {
		Status     string `json:"status"`
		Resolution string `json:"resolution"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var ticket models.SupportTicket
	err := database.Database.Db.Where("id = ? AND school_id = ? AND is_deleted = ?",
		ticketID, schoolID, false).First(&ticket).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
	}

	ticket.Status = reqData.Status
	if reqData.Resolution != "" {
		ticket.Resolution = reqData.Resolution
	}
	if err := database.Database.Db.Save(&ticket).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update ticket!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ticket updated successfully!", ticket)
}
