package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/internal/handlers"
	"github.com/fleetflow/fleetflow-backend/internal/middleware"
	"github.com/fleetflow/fleetflow-backend/internal/models"
	"github.com/fleetflow/fleetflow-backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	tripService := services.NewTripService(db)
	maintenanceService := services.NewMaintenanceService(db)
	vehicleService := services.NewVehicleService(db)
	driverService := services.NewDriverService(db)
	availabilityService := services.NewAvailabilityService(db)
	analyticsService := services.NewAnalyticsService(db)

	authHandler := handlers.NewAuthHandler()
	tripHandler := handlers.NewTripHandler(tripService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, maintenanceService)
	driverHandler := handlers.NewDriverHandler(driverService)
	dispatchHandler := handlers.NewDispatchHandler(availabilityService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	api := app.Group("/api")

	// Auth
	api.Post("/auth/login", authHandler.Login)

	allRoles := []string{models.RoleManager, models.RoleDispatcher, models.RoleSafety, models.RoleFinance}

	// Vehicles
	vehicles := api.Group("/vehicles", middleware.Authenticate())
	vehicles.Get("/", middleware.RequireRole(allRoles...), vehicleHandler.ListVehicles)
	vehicles.Get("/kpis", middleware.RequireRole(models.RoleManager, models.RoleFinance), analyticsHandler.GetVehicleKpis)
	vehicles.Get("/in-shop", middleware.RequireRole(models.RoleManager, models.RoleDispatcher), vehicleHandler.ListInShop)
	vehicles.Post("/", middleware.RequireRole(models.RoleManager), vehicleHandler.CreateVehicle)
	vehicles.Patch("/:id/status", middleware.RequireRole(models.RoleManager), vehicleHandler.UpdateStatus)
	vehicles.Post("/:id/maintenance", middleware.RequireRole(models.RoleManager), vehicleHandler.OpenMaintenance)
	vehicles.Patch("/:id/maintenance/:logId/complete", middleware.RequireRole(models.RoleManager), vehicleHandler.CompleteMaintenance)

	// Drivers
	drivers := api.Group("/drivers", middleware.Authenticate())
	drivers.Get("/", middleware.RequireRole(allRoles...), driverHandler.ListDrivers)
	drivers.Get("/expiring-licences", middleware.RequireRole(models.RoleManager, models.RoleSafety), driverHandler.ListExpiringLicences)
	drivers.Patch("/:id", middleware.RequireRole(models.RoleManager, models.RoleSafety), driverHandler.UpdateDriver)

	// Trips
	trips := api.Group("/trips", middleware.Authenticate())
	trips.Get("/", middleware.RequireRole(allRoles...), tripHandler.ListTrips)
	trips.Post("/", middleware.RequireRole(models.RoleManager, models.RoleDispatcher), tripHandler.CreateTrip)
	trips.Post("/:id/dispatch", middleware.RequireRole(models.RoleDispatcher, models.RoleManager), tripHandler.DispatchTrip)
	trips.Post("/:id/complete", middleware.RequireRole(models.RoleDispatcher, models.RoleManager), tripHandler.CompleteTrip)
	trips.Post("/:id/cancel", middleware.RequireRole(models.RoleDispatcher, models.RoleManager), tripHandler.CancelTrip)
	trips.Post("/:id/fuel-log", middleware.RequireRole(models.RoleDispatcher, models.RoleManager), tripHandler.AddFuelLog)

	// Dispatch board
	dispatch := api.Group("/dispatch", middleware.Authenticate())
	dispatch.Get("/available", middleware.RequireRole(models.RoleDispatcher, models.RoleManager), dispatchHandler.GetAvailability)

	// Expenses
	expenses := api.Group("/expenses", middleware.Authenticate())
	expenses.Get("/", middleware.RequireRole(models.RoleFinance, models.RoleManager), analyticsHandler.ListExpenses)

	// Analytics
	analytics := api.Group("/analytics", middleware.Authenticate())
	analytics.Get("/dashboard", middleware.RequireRole(allRoles...), analyticsHandler.GetDashboard)
	analytics.Get("/finance", middleware.RequireRole(models.RoleFinance, models.RoleManager), analyticsHandler.GetFinance)
}
