package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/fleetflow-backend/internal/services"
)

// DispatchHandler serves the dispatch availability board
type DispatchHandler struct {
	availability *services.AvailabilityService
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(availability *services.AvailabilityService) *DispatchHandler {
	return &DispatchHandler{availability: availability}
}

// GetAvailability returns vehicles and drivers free for a new dispatch
func (h *DispatchHandler) GetAvailability(c *fiber.Ctx) error {
	data, err := h.availability.GetDispatchAvailability(c.Context(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
