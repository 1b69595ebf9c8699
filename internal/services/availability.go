package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/internal/models"
)

// AvailabilityService answers "who is free right now". It is a derived view
// over the store's active-trip predicate, not a separate cache: a vehicle is
// available iff its status says so, a driver is assignable iff on duty with a
// valid license and not tied to a dispatched trip.
type AvailabilityService struct {
	db *gorm.DB
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// DispatchAvailability is the dispatch board snapshot
type DispatchAvailability struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	Drivers  []models.Driver  `json:"drivers"`
}

// GetDispatchAvailability returns vehicles and drivers eligible for a new
// dispatch. Busy drivers are removed by set subtraction against the
// dispatched-trip driver set; the two-step computation is safe because
// driver-busy is kept consistent by the partial unique index enforced at
// dispatch time.
func (s *AvailabilityService) GetDispatchAvailability(ctx context.Context, now time.Time) (*DispatchAvailability, error) {
	db := s.db.WithContext(ctx)

	var vehicles []models.Vehicle
	if err := db.Where("status = ?", models.VehicleStatusAvailable).Find(&vehicles).Error; err != nil {
		return nil, err
	}

	var driverPool []models.Driver
	err := db.Where("status = ? AND license_expires_at >= ?", models.DriverStatusOnDuty, now).
		Find(&driverPool).Error
	if err != nil {
		return nil, err
	}

	var busyDriverIDs []string
	err = db.Model(&models.Trip{}).
		Where("status = ?", models.TripStatusDispatched).
		Pluck("driver_id", &busyDriverIDs).Error
	if err != nil {
		return nil, err
	}

	busy := make(map[string]bool, len(busyDriverIDs))
	for _, id := range busyDriverIDs {
		busy[id] = true
	}

	drivers := make([]models.Driver, 0, len(driverPool))
	for _, d := range driverPool {
		if !busy[d.ID] {
			drivers = append(drivers, d)
		}
	}

	return &DispatchAvailability{Vehicles: vehicles, Drivers: drivers}, nil
}
