package schoolValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// validationErrors flattens validator.v10 output into the field->message map
// the response helper expects.
func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[strings.ToLower(fe.Field())] = "Failed validation: " + fe.Tag()
		}
	}
	return errors
}

func CreateSchool() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name         string `json:"name" validate:"required,min=3"`
			Slug         string `json:"slug" validate:"required,min=3,max=40"`
			ContactEmail string `json:"contact_email" validate:"required,email"`
			Address      string `json:"address"`
			City         string `json:"city"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedSchool", reqData)
		return c.Next()
	}
}

func AddTeacher() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Name    string `json:"name" validate:"required,min=3"`
			Email   string `json:"email" validate:"required,email"`
			Subject string `json:"subject"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedTeacher", reqData)
		return c.Next()
	}
}

func SchoolID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid school id!", nil)
		}
		c.Locals("schoolParamID", id)
		return c.Next()
	}
}

func TeacherID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("teacherId"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid teacher id!", nil)
		}
		c.Locals("teacherParamID", id)
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
