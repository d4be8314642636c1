package authValidator

import (
	"regexp"
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func isValidEmail(email string) bool {
	re := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return re.MatchString(email)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+$`)

func SchoolRegistration() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			SchoolName   string `json:"school_name" validate:"required,min=3"`
			Slug         string `json:"slug" validate:"required,min=3,max=40,lowercase,alphanum"`
			ContactEmail string `json:"contact_email" validate:"required,email"`
			AdminName    string `json:"admin_name" validate:"required,min=3"`
			AdminEmail   string `json:"admin_email" validate:"required,email"`
			Password     string `json:"password" validate:"required,min=8"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.SchoolName = strings.TrimSpace(reqData.SchoolName)
		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))
		reqData.AdminName = strings.TrimSpace(reqData.AdminName)

		if len(reqData.SchoolName) < 3 {
			errors["school_name"] = "School name must be at least 3 characters long!"
		}

		if len(reqData.Slug) < 3 || len(reqData.Slug) > 40 {
			errors["slug"] = "Slug must be between 3 and 40 characters!"
		} else if !slugPattern.MatchString(reqData.Slug) {
			errors["slug"] = "Slug may only contain lowercase letters and digits!"
		}

		if !isValidEmail(reqData.ContactEmail) {
			errors["contact_email"] = "Invalid contact email format!"
		}

		if len(reqData.AdminName) < 3 {
			errors["admin_name"] = "Admin name must be at least 3 characters long!"
		}

		if !isValidEmail(reqData.AdminEmail) {
			errors["admin_email"] = "Invalid admin email format!"
		}

		if len(reqData.Password) < 8 {
			errors["password"] = "Password must be at least 8 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSchoolRegistration", reqData)
		return c.Next()
	}
}

func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if !isValidEmail(reqData.Email) {
			errors["email"] = "Invalid email format!"
		}

		if strings.TrimSpace(reqData.Password) == "" {
			errors["password"] = "Password is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLogin", reqData)
		return c.Next()
	}
}

func ResetPassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Email       string `json:"email"`
			Code        string `json:"code"`
			NewPassword string `json:"new_password"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if !isValidEmail(reqData.Email) {
			errors["email"] = "Invalid email format!"
		}

		if strings.TrimSpace(reqData.Code) == "" {
			errors["code"] = "Verification code is required!"
		}

		if len(reqData.NewPassword) < 8 {
			errors["new_password"] = "Password must be at least 8 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedResetPassword", reqData)
		return c.Next()
	}
}

func ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.OldPassword) == "" {
			errors["old_password"] = "Old password is required!"
		}

		if len(reqData.NewPassword) < 8 {
			errors["new_password"] = "Password must be at least 8 characters long!"
		}

		if reqData.OldPassword == reqData.NewPassword {
			errors["new_password"] = "New password must differ from the old one!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedChangePassword", reqData)
		return c.Next()
	}
}

func LoginHistory() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request query!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page == nil || *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		if reqData.Limit == nil || *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLoginHistory", reqData)
		return c.Next()
	}
}
