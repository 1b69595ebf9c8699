package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/fleetflow-backend/internal/middleware"
	"github.com/fleetflow/fleetflow-backend/internal/models"
	"github.com/fleetflow/fleetflow-backend/internal/services"
)

// VehicleHandler handles vehicle and maintenance requests
type VehicleHandler struct {
	vehicles    *services.VehicleService
	maintenance *services.MaintenanceService
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles *services.VehicleService, maintenance *services.MaintenanceService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, maintenance: maintenance}
}

// vehicleView is the wire shape for vehicles: canonical fields plus the
// legacy "mileage"/"unitNumber" aliases old clients still read. Maintenance
// history is attached except for the finance role.
type vehicleView struct {
	models.Vehicle
	Mileage     int                     `json:"mileage"`
	UnitNumber  string                  `json:"unitNumber"`
	Maintenance []models.MaintenanceLog `json:"maintenance,omitempty"`
}

func formatVehicle(v models.Vehicle, logs []models.MaintenanceLog) vehicleView {
	return vehicleView{
		Vehicle:     v,
		Mileage:     v.OdometerKm,
		UnitNumber:  fmt.Sprintf("%s-%s", v.Name, v.Model),
		Maintenance: logs,
	}
}

// ListVehicles returns all vehicles with maintenance history attached
func (h *VehicleHandler) ListVehicles(c *fiber.Ctx) error {
	vehicles, err := h.vehicles.List(c.Context())
	if err != nil {
		return err
	}

	role := middleware.Role(c)
	data := make([]vehicleView, 0, len(vehicles))
	for _, v := range vehicles {
		var logs []models.MaintenanceLog
		if role != models.RoleFinance {
			logs, err = h.maintenance.ListForVehicle(c.Context(), v.ID)
			if err != nil {
				return err
			}
		}
		data = append(data, formatVehicle(v, logs))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(data),
		"data":    data,
	})
}

// ListInShop returns vehicles currently in the shop
func (h *VehicleHandler) ListInShop(c *fiber.Ctx) error {
	vehicles, err := h.vehicles.ListInShop(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(vehicles),
		"data":    vehicles,
	})
}

// CreateVehicle registers a new vehicle. Accepts legacy "unitNumber" and
// "mileage" fields from older clients.
func (h *VehicleHandler) CreateVehicle(c *fiber.Ctx) error {
	var req struct {
		services.CreateVehicleInput
		UnitNumber string `json:"unitNumber"`
		Mileage    *int   `json:"mileage"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	in := req.CreateVehicleInput
	if in.Name == "" {
		in.Name = req.UnitNumber
	}
	if in.Name == "" {
		in.Name = "Fleet Vehicle"
	}
	if in.Model == "" {
		in.Model = "GEN"
	}
	if in.VehicleType == "" {
		in.VehicleType = models.VehicleTypeVan
	}
	if in.MaxLoadKg == 0 {
		in.MaxLoadKg = 1000
	}
	if in.OdometerKm == 0 && req.Mileage != nil {
		in.OdometerKm = *req.Mileage
	}
	if in.Region == "" {
		in.Region = "unspecified"
	}

	if len(in.Plate) < 3 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Plate is required",
		})
	}
	if !models.IsValidVehicleType(in.VehicleType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid vehicle type",
		})
	}
	if in.MaxLoadKg <= 0 || in.OdometerKm < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid load capacity or odometer",
		})
	}

	vehicle, err := h.vehicles.Create(c.Context(), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    vehicle,
	})
}

// UpdateStatus is the administrative status override
func (h *VehicleHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !models.IsValidVehicleStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}

	vehicle, err := h.vehicles.OverrideStatus(c.Context(), c.Params("id"), req.Status, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    vehicle,
	})
}

// OpenMaintenance opens a maintenance log on a vehicle
func (h *VehicleHandler) OpenMaintenance(c *fiber.Ctx) error {
	var req struct {
		Note string  `json:"note"`
		Cost float64 `json:"cost"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Note) < 3 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Maintenance note is required",
		})
	}
	if req.Cost < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cost cannot be negative",
		})
	}

	log, err := h.maintenance.Open(c.Context(), c.Params("id"), services.OpenMaintenanceInput{
		Note: req.Note,
		Cost: req.Cost,
		Role: middleware.Role(c),
	}, time.Now())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    log,
	})
}

// CompleteMaintenance closes a maintenance log
func (h *VehicleHandler) CompleteMaintenance(c *fiber.Ctx) error {
	log, err := h.maintenance.Close(c.Context(), c.Params("id"), c.Params("logId"), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    log,
	})
}
