package supportValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

var validPriorities = map[string]bool{"low": true, "medium": true, "high": true}
var validStatuses = map[string]bool{"open": true, "in_progress": true, "resolved": true, "closed": true}

func CreateTicket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Priority    string `json:"priority"`
			Category    string `json:"category"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		}
		if reqData.Priority != "" && !validPriorities[reqData.Priority] {
			errors["priority"] = "Priority must be low, medium or high!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTicket", reqData)
		return c.Next()
	}
}

func TicketStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Status     string `json:"status"`
			Resolution string `json:"resolution"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if !validStatuses[reqData.Status] {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "Status must be open, in_progress, resolved or closed!",
			})
		}

		c.Locals("validatedTicketStatus", reqData)
		return c.Next()
	}
}

func TicketID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid ticket id!", nil)
		}
		c.Locals("ticketID", id)
		return c.Next()
	}
}
