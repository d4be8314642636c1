package courseValidator

import (
	"strings"
	"time"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func Progress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ProgressPercentage float64 `json:"progress_percentage"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.ProgressPercentage < 0 || reqData.ProgressPercentage > 100 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"progress_percentage": "Progress must be between 0 and 100!",
			})
		}

		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

func QuizAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers map[string][]uint `json:"answers"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if len(reqData.Answers) == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"answers": "At least one answer is required!",
			})
		}

		c.Locals("validatedQuizAttempt", reqData)
		return c.Next()
	}
}

func Question() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Prompt      string `json:"prompt"`
			Explanation string `json:"explanation"`
			Options     []struct {
				OptionText string `json:"option_text"`
				IsCorrect  bool   `json:"is_correct"`
			} `json:"options"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Prompt) == "" {
			errors["prompt"] = "Prompt is required!"
		}

		if len(reqData.Options) < 2 {
			errors["options"] = "At least two options are required!"
		} else {
			hasCorrect := false
			for _, opt := range reqData.Options {
				if strings.TrimSpace(opt.OptionText) == "" {
					errors["options"] = "Option text cannot be empty!"
					break
				}
				if opt.IsCorrect {
					hasCorrect = true
				}
			}
			if _, found := errors["options"]; !found && !hasCorrect {
				errors["options"] = "At least one option must be correct!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuestion", reqData)
		return c.Next()
	}
}

func Assignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TeacherIDs []uint     `json:"teacher_ids"`
			DueAt      *time.Time `json:"due_at"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.TeacherIDs) == 0 {
			errors["teacher_ids"] = "At least one teacher id is required!"
		}

		if reqData.DueAt != nil && reqData.DueAt.Before(time.Now()) {
			errors["due_at"] = "Due date must be in the future!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssignment", reqData)
		return c.Next()
	}
}

func Rejection() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Reason) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"reason": "A rejection reason is required!",
			})
		}

		c.Locals("validatedRejection", reqData)
		return c.Next()
	}
}

func Review() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Rating < 1 || reqData.Rating > 5 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"rating": "Rating must be between 1 and 5!",
			})
		}

		c.Locals("validatedReview", reqData)
		return c.Next()
	}
}

func Announcement() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title    string `json:"title"`
			Body     string `json:"body"`
			CourseID *uint  `json:"course_id"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if strings.TrimSpace(reqData.Body) == "" {
			errors["body"] = "Body is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAnnouncement", reqData)
		return c.Next()
	}
}
