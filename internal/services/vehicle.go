package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/internal/apperr"
	"github.com/fleetflow/fleetflow-backend/internal/models"
)

// VehicleService handles vehicle CRUD at the boundary. Vehicle status is
// owned by the trip and maintenance lifecycles; the only direct write here is
// the administrative override, which is trusted to the caller.
type VehicleService struct {
	db *gorm.DB
}

// NewVehicleService creates a new vehicle service
func NewVehicleService(db *gorm.DB) *VehicleService {
	return &VehicleService{db: db}
}

// CreateVehicleInput carries the fields for a new vehicle
type CreateVehicleInput struct {
	Name            string   `json:"name"`
	Model           string   `json:"model"`
	Plate           string   `json:"plate"`
	VehicleType     string   `json:"vehicleType"`
	MaxLoadKg       int      `json:"maxLoadKg"`
	OdometerKm      int      `json:"odometerKm"`
	Region          string   `json:"region"`
	AcquisitionCost *float64 `json:"acquisitionCost"`
}

// List returns all vehicles
func (s *VehicleService) List(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := s.db.WithContext(ctx).Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// ListInShop returns vehicles currently held in the shop
func (s *VehicleService) ListInShop(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := s.db.WithContext(ctx).
		Where("status = ?", models.VehicleStatusInShop).
		Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

// Create inserts a new vehicle after a friendly plate-conflict check; the
// unique index on plate is the real guarantee.
func (s *VehicleService) Create(ctx context.Context, in CreateVehicleInput) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		Name:            in.Name,
		Model:           in.Model,
		Plate:           in.Plate,
		VehicleType:     in.VehicleType,
		MaxLoadKg:       in.MaxLoadKg,
		OdometerKm:      in.OdometerKm,
		Region:          in.Region,
		Status:          models.VehicleStatusAvailable,
		AcquisitionCost: in.AcquisitionCost,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Vehicle{}).Where("plate = ?", in.Plate).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("Vehicle plate already exists", "PLATE_CONFLICT")
		}
		return tx.Create(vehicle).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("Vehicle plate already exists", "PLATE_CONFLICT")
		}
		return nil, err
	}
	return vehicle, nil
}

// OverrideStatus sets the vehicle status directly, bypassing trip-derived
// logic. Administrative use only.
func (s *VehicleService) OverrideStatus(ctx context.Context, id, status string, now time.Time) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&vehicle).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Vehicle not found", "VEHICLE_NOT_FOUND")
		}
		if err != nil {
			return err
		}

		vehicle.Status = status
		return tx.Model(&models.Vehicle{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": status, "updated_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}
