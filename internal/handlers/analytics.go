package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/fleetflow-backend/internal/services"
)

// AnalyticsHandler serves the read-only reporting endpoints
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetDashboard returns fleet-level dashboard counters
func (h *AnalyticsHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.analytics.GetDashboardMetrics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetFinance returns the per-vehicle finance rollup
func (h *AnalyticsHandler) GetFinance(c *fiber.Ctx) error {
	data, err := h.analytics.GetFinanceMetrics(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(data),
		"data":    data,
	})
}

// ListExpenses returns all expenses with their total
func (h *AnalyticsHandler) ListExpenses(c *fiber.Ctx) error {
	report, err := h.analytics.ListExpenses(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(report.Items),
		"data":    report.Items,
		"meta": fiber.Map{
			"totalAmount": report.Total,
		},
	})
}

// GetVehicleKpis returns the legacy vehicle KPI block
func (h *AnalyticsHandler) GetVehicleKpis(c *fiber.Ctx) error {
	data, err := h.analytics.GetVehicleKpis(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}
