package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/fleetflow-backend/internal/models"
	"github.com/fleetflow/fleetflow-backend/internal/services"
)

// DriverHandler handles driver requests
type DriverHandler struct {
	drivers *services.DriverService
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(drivers *services.DriverService) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

// ListDrivers returns all drivers
func (h *DriverHandler) ListDrivers(c *fiber.Ctx) error {
	drivers, err := h.drivers.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(drivers),
		"data":    drivers,
	})
}

// ListExpiringLicences returns drivers whose licence expires soon
func (h *DriverHandler) ListExpiringLicences(c *fiber.Ctx) error {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid days parameter",
			})
		}
		days = parsed
	}

	drivers, err := h.drivers.ListExpiring(c.Context(), days, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(drivers),
		"data":    drivers,
	})
}

// UpdateDriver applies a partial patch to a driver
func (h *DriverHandler) UpdateDriver(c *fiber.Ctx) error {
	var req services.UpdateDriverInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Status != nil && !models.IsValidDriverStatus(*req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}
	if req.LicenseCategory != nil && !models.IsValidLicenseCategory(*req.LicenseCategory) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid license category",
		})
	}
	if req.SafetyScore != nil && (*req.SafetyScore < 0 || *req.SafetyScore > 100) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Safety score must be between 0 and 100",
		})
	}

	driver, err := h.drivers.Update(c.Context(), c.Params("id"), req, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    driver,
	})
}
