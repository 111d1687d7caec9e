package main

import (
	"examly/config"
	"examly/database"
	"examly/grading"
	"examly/middleware"
	authRoutes "examly/routers/authRoutes"
	classRoutes "examly/routers/classRoutes"
	enrollmentRoutes "examly/routers/enrollmentRoutes"
	examRoutes "examly/routers/examRoutes"
	gradingRoutes "examly/routers/gradingRoutes"
	questionRoutes "examly/routers/questionRoutes"
	userRoutes "examly/routers/userRoutes"
	"examly/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"log"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	middleware.InitExamStatusScheduler()
	grading.InitDefaultProvider()

	// Optional cron sweep for expired exams. Off unless EXAM_SWEEP_CRON is set.
	if sweep := utils.InitializeExamScheduler(); sweep != nil {
		defer sweep.Stop()
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/api/test", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": true, "message": "Server is running!"})
	})

	authRoutes.SetupAuthRoutes(app)
	classRoutes.SetupClassRoutes(app)
	questionRoutes.SetupQuestionRoutes(app)
	examRoutes.SetupExamRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app)
	gradingRoutes.SetupGradingRoutes(app)
	userRoutes.SetupUserRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
