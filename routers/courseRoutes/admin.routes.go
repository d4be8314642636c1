package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up the school-admin authoring and reporting
// routes. Everything here is tenant-scoped and requires the SCHOOL_ADMIN
// role.
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/courses",
		middleware.JWTMiddleware,
		middleware.SchoolMiddleware,
		middleware.RequireRoles(models.RoleSchoolAdmin))

	// Courses
	adminGroup.Post("/", validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Get("/", validators.List(), controllers.AdminListCourses)
	adminGroup.Get("/:id", validators.CourseID(), controllers.AdminGetCourseDetails)
	adminGroup.Patch("/:id", validators.CourseID(), validators.UpdateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", validators.CourseID(), controllers.AdminDeleteCourse)
	adminGroup.Post("/:id/publish", validators.CourseID(), controllers.AdminPublishCourse)

	// Modules
	adminGroup.Post("/:id/modules", validators.CourseID(), validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Get("/:id/modules", validators.CourseID(), controllers.AdminListModules)
	adminGroup.Patch("/:id/modules/:moduleId", validators.CourseID(), validators.ModuleID(), validators.UpdateModule(), controllers.AdminUpdateModule)
	adminGroup.Delete("/:id/modules/:moduleId", validators.CourseID(), validators.ModuleID(), controllers.AdminDeleteModule)
	adminGroup.Post("/:id/modules/reorder", validators.CourseID(), controllers.AdminReorderModules)

	// Content
	adminGroup.Post("/:id/modules/:moduleId/content", validators.CourseID(), validators.ModuleID(), validators.CreateContent(), controllers.AdminCreateContent)
	adminGroup.Get("/:id/modules/:moduleId/content", validators.CourseID(), validators.ModuleID(), controllers.AdminListModuleContent)
	adminGroup.Patch("/:id/content/:contentId", validators.CourseID(), validators.ContentID(), validators.UpdateContent(), controllers.AdminUpdateContent)
	adminGroup.Delete("/:id/content/:contentId", validators.CourseID(), validators.ContentID(), controllers.AdminDeleteContent)
	adminGroup.Post("/:id/modules/:moduleId/content/reorder", validators.CourseID(), validators.ModuleID(), controllers.AdminReorderContent)

	// Video ingest
	adminGroup.Post("/:id/modules/:moduleId/video", validators.CourseID(), validators.ModuleID(), controllers.UploadVideo)
	adminGroup.Get("/:id/videos/:videoId", validators.CourseID(), validators.VideoID(), controllers.GetVideoStatus)
	adminGroup.Post("/:id/videos/:videoId/ingest", validators.CourseID(), validators.VideoID(), controllers.RerunIngest)

	// Quiz authoring
	adminGroup.Post("/:id/content/:contentId/questions", validators.CourseID(), validators.ContentID(), validators.Question(), controllers.AdminAddQuestion)
	adminGroup.Delete("/:id/content/:contentId/questions/:questionId", validators.CourseID(), validators.ContentID(), validators.QuestionID(), controllers.AdminDeleteQuestion)

	// Assignments
	adminGroup.Post("/:id/assignments", validators.CourseID(), validators.Assignment(), controllers.AssignCourse)
	adminGroup.Get("/:id/assignments", validators.CourseID(), controllers.AdminListAssignments)
	adminGroup.Delete("/:id/assignments/:teacherId", validators.CourseID(), validators.TeacherID(), controllers.Unassign)

	// Reporting
	adminGroup.Get("/:id/completed-teachers", validators.CourseID(), controllers.CompletedTeachersReport)
	adminGroup.Get("/:id/reviews", validators.CourseID(), controllers.ListCourseReviews)

	// Certificates
	certGroup := app.Group("/admin/certificate-requests",
		middleware.JWTMiddleware,
		middleware.SchoolMiddleware,
		middleware.RequireRoles(models.RoleSchoolAdmin))
	certGroup.Get("/", controllers.AdminListCertificateRequests)
	certGroup.Post("/:requestId/approve", validators.RequestID(), controllers.ApproveCertificate)
	certGroup.Post("/:requestId/reject", validators.RequestID(), validators.Rejection(), controllers.RejectCertificate)

	// Announcements and the school dashboard
	adminMisc := app.Group("/admin",
		middleware.JWTMiddleware,
		middleware.SchoolMiddleware,
		middleware.RequireRoles(models.RoleSchoolAdmin))
	adminMisc.Post("/announcements", validators.Announcement(), controllers.PostAnnouncement)
	adminMisc.Get("/dashboard", controllers.SchoolDashboard)
}
