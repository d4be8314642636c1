package notificationValidator

import (
	"strconv"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func NotificationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid notification id!", nil)
		}
		c.Locals("notificationID", id)
		return c.Next()
	}
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request query!", nil)
		}

		if reqData.Page != nil && *reqData.Page < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Page must be greater than 0!", nil)
		}
		if reqData.Limit != nil && *reqData.Limit < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Limit must be greater than 0!", nil)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}
