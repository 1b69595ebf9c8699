package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/fleetflow-backend/internal/middleware"
	"github.com/fleetflow/fleetflow-backend/internal/models"
	"github.com/fleetflow/fleetflow-backend/internal/services"
)

// TripHandler handles trip lifecycle requests
type TripHandler struct {
	trips *services.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(trips *services.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// tripView is the wire shape for trips. Old clients read "status" with
// "planned" instead of "draft"; "workflowStatus" carries the canonical value.
type tripView struct {
	models.Trip
	Status         string `json:"status"`
	WorkflowStatus string `json:"workflowStatus"`
}

func formatTrip(t models.Trip) tripView {
	legacy := t.Status
	if legacy == models.TripStatusDraft {
		legacy = "planned"
	}
	return tripView{Trip: t, Status: legacy, WorkflowStatus: t.Status}
}

// ListTrips returns all trips
func (h *TripHandler) ListTrips(c *fiber.Ctx) error {
	trips, err := h.trips.ListTrips(c.Context())
	if err != nil {
		return err
	}

	data := make([]tripView, 0, len(trips))
	for _, t := range trips {
		data = append(data, formatTrip(t))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(data),
		"data":    data,
	})
}

// CreateTrip creates a draft trip
func (h *TripHandler) CreateTrip(c *fiber.Ctx) error {
	var req services.CreateTripInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.VehicleID == "" || req.DriverID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Vehicle ID and Driver ID are required",
		})
	}
	if len(req.Origin) < 2 || len(req.Destination) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Origin and destination are required",
		})
	}
	if req.ScheduledAt.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Scheduled time is required",
		})
	}
	if req.CargoWeightKg < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cargo weight cannot be negative",
		})
	}

	trip, err := h.trips.CreateTrip(c.Context(), req, middleware.Role(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    formatTrip(*trip),
	})
}

// DispatchTrip transitions a draft trip to dispatched
func (h *TripHandler) DispatchTrip(c *fiber.Ctx) error {
	trip, err := h.trips.DispatchTrip(c.Context(), c.Params("id"), middleware.Role(c), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    formatTrip(*trip),
	})
}

// CompleteTrip closes a dispatched trip with final odometer and fuel figures
func (h *TripHandler) CompleteTrip(c *fiber.Ctx) error {
	var req services.CompleteTripInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.FinalOdometerKm < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Final odometer cannot be negative",
		})
	}
	if req.FuelLiters <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Fuel liters must be positive",
		})
	}
	if req.FuelCost < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Fuel cost cannot be negative",
		})
	}

	trip, fuel, err := h.trips.CompleteTrip(c.Context(), c.Params("id"), req, middleware.Role(c), time.Now())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"trip": formatTrip(*trip),
			"fuel": fuel,
		},
	})
}

// CancelTrip cancels a draft or dispatched trip
func (h *TripHandler) CancelTrip(c *fiber.Ctx) error {
	trip, err := h.trips.CancelTrip(c.Context(), c.Params("id"), middleware.Role(c), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    formatTrip(*trip),
	})
}

// AddFuelLog records an ad-hoc fuel entry against a trip
func (h *TripHandler) AddFuelLog(c *fiber.Ctx) error {
	var req services.FuelLogInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Liters <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Fuel liters must be positive",
		})
	}
	if req.Cost < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Fuel cost cannot be negative",
		})
	}

	fuel, err := h.trips.AddFuelLog(c.Context(), c.Params("id"), req, time.Now())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fuel,
	})
}
