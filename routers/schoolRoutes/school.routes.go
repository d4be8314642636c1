package schoolRoutes

import (
	schoolController "lms/controllers/school"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/school"

	"github.com/gofiber/fiber/v2"
)

// SetupSchoolRoutes sets up platform-level school management and the
// school-admin membership routes.
func SetupSchoolRoutes(app *fiber.App) {
	// Platform administration, not tenant-scoped
	adminGroup := app.Group("/admin/schools", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleSuperAdmin))
	adminGroup.Post("/", validators.CreateSchool(), schoolController.CreateSchool)
	adminGroup.Get("/", validators.List(), schoolController.ListSchools)
	adminGroup.Patch("/:id", validators.SchoolID(), schoolController.UpdateSchool)
	adminGroup.Delete("/:id", validators.SchoolID(), schoolController.DeactivateSchool)

	// School-admin membership management, tenant-scoped
	schoolGroup := app.Group("/school", middleware.JWTMiddleware, middleware.SchoolMiddleware)
	schoolGroup.Get("/profile", schoolController.GetSchoolProfile)

	teacherGroup := schoolGroup.Group("/teachers", middleware.RequireRoles(models.RoleSchoolAdmin))
	teacherGroup.Post("/", validators.AddTeacher(), schoolController.AddTeacher)
	teacherGroup.Get("/", validators.List(), schoolController.ListTeachers)
	teacherGroup.Delete("/:teacherId", validators.TeacherID(), schoolController.DeactivateTeacher)
}
