package main

import (
	"log"

	"lms/config"
	"lms/database"
	"lms/middleware"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	notificationRoutes "lms/routers/notificationRoutes"
	schoolRoutes "lms/routers/schoolRoutes"
	supportRoutes "lms/routers/supportRoutes"
	webhookRoutes "lms/routers/webhookRoutes"
	"lms/services/ingest"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization,X-School-Slug",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve uploaded videos and transcripts
	app.Static("/uploads", config.AppConfig.UploadDir)

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDb, err := database.Database.Db.DB()
		if err != nil || sqlDb.Ping() != nil {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database unreachable!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})

	authRoutes.SetupAuthRoutes(app)
	schoolRoutes.SetupSchoolRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	notificationRoutes.SetupNotificationRoutes(app)
	webhookRoutes.SetupWebhookRoutes(app)
	supportRoutes.SetupSupportRoutes(app)

	utils.InitializeReminderScheduler()
	utils.InitializeWebhookScheduler()
	ingest.InitializeIngestScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
