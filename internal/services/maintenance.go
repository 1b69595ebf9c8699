package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/internal/apperr"
	"github.com/fleetflow/fleetflow-backend/internal/models"
)

// MaintenanceService is the secondary lifecycle on vehicles: opening a log
// pulls the vehicle into the shop, closing the last open log may release it.
// Both operations run as single transactions so they never fight the trip
// lifecycle over vehicle status.
type MaintenanceService struct {
	db *gorm.DB
}

// NewMaintenanceService creates a new maintenance lifecycle service
func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{db: db}
}

// OpenMaintenanceInput carries a new maintenance log entry
type OpenMaintenanceInput struct {
	Note string  `json:"note"`
	Cost float64 `json:"cost"`
	Role string  `json:"-"`
}

// Open inserts an open maintenance log, forces the vehicle into the shop and
// records the matching maintenance expense. Forcing in_shop is a deliberate
// override even if the vehicle is mid-trip administratively.
func (s *MaintenanceService) Open(ctx context.Context, vehicleID string, in OpenMaintenanceInput, now time.Time) (*models.MaintenanceLog, error) {
	var log models.MaintenanceLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := lockByID(tx, &vehicle, vehicleID, "Vehicle not found", "VEHICLE_NOT_FOUND"); err != nil {
			return err
		}

		log = models.MaintenanceLog{
			VehicleID:     vehicleID,
			Note:          in.Note,
			Cost:          in.Cost,
			OpenedAt:      now,
			CreatedByRole: in.Role,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Vehicle{}).Where("id = ?", vehicleID).
			Updates(map[string]interface{}{"status": models.VehicleStatusInShop, "updated_at": now}).Error; err != nil {
			return err
		}

		expense := models.Expense{
			Type:             models.ExpenseTypeMaintenance,
			VehicleID:        vehicleID,
			MaintenanceLogID: &log.ID,
			Amount:           in.Cost,
			Notes:            &log.Note,
			Date:             now,
		}
		return tx.Create(&expense).Error
	})
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// Close stamps the log's closedAt and recomputes whether the vehicle may
// return to available: only with no dispatched trip, no other open log and a
// non-retired vehicle. The recomputation re-queries inside the same
// transaction as the close write so stale reads cannot resurrect
// availability.
func (s *MaintenanceService) Close(ctx context.Context, vehicleID, logID string, now time.Time) (*models.MaintenanceLog, error) {
	var log models.MaintenanceLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := lockByID(tx, &vehicle, vehicleID, "Vehicle not found", "VEHICLE_NOT_FOUND"); err != nil {
			return err
		}

		err := tx.Where("id = ? AND vehicle_id = ?", logID, vehicleID).First(&log).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Maintenance log not found", "MAINT_NOT_FOUND")
		}
		if err != nil {
			return err
		}
		if log.ClosedAt != nil {
			return apperr.Conflict("Maintenance already completed", "MAINT_DONE")
		}

		log.ClosedAt = &now
		if err := tx.Model(&models.MaintenanceLog{}).Where("id = ?", logID).
			Update("closed_at", now).Error; err != nil {
			return err
		}

		activeTrip, err := dispatchedTripExists(tx, "vehicle_id", vehicleID)
		if err != nil {
			return err
		}
		stillOpen, err := openMaintenanceExists(tx, vehicleID)
		if err != nil {
			return err
		}

		if !activeTrip && !stillOpen && vehicle.Status != models.VehicleStatusRetired {
			if err := tx.Model(&models.Vehicle{}).Where("id = ?", vehicleID).
				Updates(map[string]interface{}{"status": models.VehicleStatusAvailable, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListForVehicle returns all maintenance logs for a vehicle, newest first.
func (s *MaintenanceService) ListForVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceLog, error) {
	var logs []models.MaintenanceLog
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("opened_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
