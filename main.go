package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/fleetflow/fleetflow-backend/database"
	"github.com/fleetflow/fleetflow-backend/internal/apperr"
	"github.com/fleetflow/fleetflow-backend/internal/jobs"
	"github.com/fleetflow/fleetflow-backend/internal/models"
	"github.com/fleetflow/fleetflow-backend/internal/routes"
	"github.com/fleetflow/fleetflow-backend/internal/services"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Println("⚠️  JWT_SECRET not set - authenticated routes will reject all requests")
	}

	// Connect to database
	log.Println("📦 Connecting to PostgreSQL database...")
	database.Connect()

	// Run migrations
	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(database.DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	log.Println("✅ Database migrations completed!")

	// Ensure demo baseline data
	if err := database.SeedIfEmpty(database.DB); err != nil {
		log.Fatal("Failed to seed database:", err)
	}

	// Start scheduled alert jobs
	alertJob := jobs.NewAlertJob(
		services.NewDriverService(database.DB),
		services.NewVehicleService(database.DB),
	)
	alertJob.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName:      "FleetFlow Backend v1.0.0",
		ErrorHandler: apperr.Handler,
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Health check endpoint with database status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service": "FleetFlow Backend API",
			"version": "1.0.0",
			"status":  "healthy",
		}

		if database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var vehicleCount, driverCount, tripCount, cargoCount int64
			database.DB.Model(&models.Vehicle{}).Count(&vehicleCount)
			database.DB.Model(&models.Driver{}).Count(&driverCount)
			database.DB.Model(&models.Trip{}).Count(&tripCount)
			database.DB.Model(&models.CargoShipment{}).Count(&cargoCount)

			response["database"] = fiber.Map{
				"status":   dbStatus,
				"vehicles": vehicleCount,
				"drivers":  driverCount,
				"trips":    tripCount,
				"cargo":    cargoCount,
			}
		}

		return c.JSON(response)
	})

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
		})
	})

	// Setup routes
	routes.SetupRoutes(app, database.DB)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping alert jobs...")
		alertJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 FleetFlow Backend starting on port %s", port)
	log.Println("📊 Storage: PostgreSQL Database")
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}
