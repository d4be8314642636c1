package middleware

import (
	"strings"

	"lms/config"
	"lms/database"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// SchoolMiddleware resolves the tenant school for the request and stores its
// id in Locals. The slug comes from the X-School-Slug header, or from the
// subdomain when the request host ends with the configured root domain
// ({slug}.teachwell.example). When the JWT carries a schoolId claim, it must
// match the resolved school; a mismatch is treated as cross-tenant access.
func SchoolMiddleware(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Get("X-School-Slug"))

	if slug == "" {
		host := c.Hostname()
		rootDomain := config.AppConfig.RootDomain
		if strings.HasSuffix(host, "."+rootDomain) {
			slug = strings.TrimSuffix(host, "."+rootDomain)
		}
	}

	if slug == "" {
		return JsonResponse(c, fiber.StatusBadRequest, false, "School could not be resolved from request!", nil)
	}

	var school models.School
	if err := database.Database.Db.Where("slug = ? AND is_active = ? AND is_deleted = ?", slug, true, false).First(&school).Error; err != nil {
		return JsonResponse(c, fiber.StatusNotFound, false, "School not found!", nil)
	}

	// Reject tokens issued for another school
	if tokenSchoolID, ok := c.Locals("tokenSchoolId").(uint); ok && tokenSchoolID != school.ID {
		return JsonResponse(c, fiber.StatusForbidden, false, "Token does not belong to this school!", nil)
	}

	c.Locals("schoolId", school.ID)
	c.Locals("schoolSlug", school.Slug)

	return c.Next()
}
