package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the teacher-facing learning routes. All of them
// require an assignment; the lock engine decides what is reachable.
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course",
		middleware.JWTMiddleware,
		middleware.SchoolMiddleware,
		middleware.RequireRoles(models.RoleTeacher))

	courseGroup.Get("/assignments", controllers.ListMyAssignments)
	courseGroup.Get("/dashboard", controllers.TeacherDashboard)
	courseGroup.Get("/certificates", controllers.ListMyCertificates)

	courseGroup.Get("/:id", validators.CourseID(), controllers.GetCourseDetail)
	courseGroup.Get("/:id/content/:contentId", validators.CourseID(), validators.ContentID(), controllers.GetContent)
	courseGroup.Post("/:id/content/:contentId/progress", validators.CourseID(), validators.ContentID(), validators.Progress(), controllers.UpdateProgress)
	courseGroup.Post("/:id/content/:contentId/complete", validators.CourseID(), validators.ContentID(), controllers.CompleteContent)

	// Quizzes
	courseGroup.Get("/:id/content/:contentId/quiz", validators.CourseID(), validators.ContentID(), controllers.GetQuiz)
	courseGroup.Post("/:id/content/:contentId/quiz/attempts", validators.CourseID(), validators.ContentID(), validators.QuizAttempt(), controllers.SubmitQuizAttempt)
	courseGroup.Get("/:id/content/:contentId/quiz/attempts", validators.CourseID(), validators.ContentID(), controllers.ListQuizAttempts)

	// Certificates and reviews
	courseGroup.Post("/:id/certificate-request", validators.CourseID(), controllers.RequestCertificate)
	courseGroup.Post("/:id/reviews", validators.CourseID(), validators.Review(), controllers.SubmitReview)

	// Announcements are visible to every member of the school
	app.Get("/announcements",
		middleware.JWTMiddleware,
		middleware.SchoolMiddleware,
		controllers.ListAnnouncements)
}
