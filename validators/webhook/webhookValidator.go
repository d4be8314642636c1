package webhookValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[strings.ToLower(fe.Field())] = "Failed validation: " + fe.Tag()
		}
	}
	return errors
}

func CreateEndpoint() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			URL    string `json:"url" validate:"required,url"`
			Secret string `json:"secret" validate:"required,min=16"`
			Events string `json:"events"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedWebhook", reqData)
		return c.Next()
	}
}

func UpdateEndpoint() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			URL      string  `json:"url" validate:"omitempty,url"`
			Secret   string  `json:"secret" validate:"omitempty,min=16"`
			Events   *string `json:"events"`
			IsActive *bool   `json:"is_active"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedWebhookUpdate", reqData)
		return c.Next()
	}
}

func EndpointID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid endpoint id!", nil)
		}
		c.Locals("endpointID", id)
		return c.Next()
	}
}

func DeliveryID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("deliveryId"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid delivery id!", nil)
		}
		c.Locals("deliveryID", id)
		return c.Next()
	}
}
