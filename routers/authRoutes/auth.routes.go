package authRoutes

import (
	authController "lms/controllers/auth"
	"lms/middleware"
	validators "lms/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes sets up registration, login and account routes
func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register-school", validators.SchoolRegistration(), authController.RegisterSchool)
	authGroup.Post("/login", validators.Login(), authController.Login)
	authGroup.Post("/send-otp", authController.SendOTP)
	authGroup.Post("/verify-otp", authController.VerifyOTP)
	authGroup.Post("/forgot-password", authController.ForgotPassword)
	authGroup.Post("/reset-password", validators.ResetPassword(), authController.ResetPassword)

	authGroup.Get("/profile", middleware.JWTMiddleware, authController.Profile)
	authGroup.Post("/change-password", middleware.JWTMiddleware, validators.ChangePassword(), authController.ChangePassword)
	authGroup.Get("/login-history", middleware.JWTMiddleware, validators.LoginHistory(), authController.LoginHistoryList)
}
