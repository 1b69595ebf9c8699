package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/internal/apperr"
	"github.com/fleetflow/fleetflow-backend/internal/models"
)

// expiringLicenseHorizonDays is the default lookahead for the expiring
// licences report.
const expiringLicenseHorizonDays = 45

// DriverService handles driver reads and the patch endpoint. Driver status
// is a plain field here on purpose - driver-busy is derived from dispatched
// trips, not stored.
type DriverService struct {
	db *gorm.DB
}

// NewDriverService creates a new driver service
func NewDriverService(db *gorm.DB) *DriverService {
	return &DriverService{db: db}
}

// UpdateDriverInput is a partial patch; nil fields are left untouched
type UpdateDriverInput struct {
	Status           *string    `json:"status"`
	LicenseExpiresAt *time.Time `json:"licenseExpiresAt"`
	LicenseCategory  *string    `json:"licenseCategory"`
	SafetyScore      *int       `json:"safetyScore"`
}

// List returns all drivers
func (s *DriverService) List(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	if err := s.db.WithContext(ctx).Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

// Get returns a single driver by ID
func (s *DriverService) Get(ctx context.Context, id string) (*models.Driver, error) {
	var driver models.Driver
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Driver not found", "DRIVER_NOT_FOUND")
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// ListExpiring returns drivers whose licence expires within the horizon
func (s *DriverService) ListExpiring(ctx context.Context, days int, now time.Time) ([]models.Driver, error) {
	if days <= 0 {
		days = expiringLicenseHorizonDays
	}
	horizon := now.Add(time.Duration(days) * 24 * time.Hour)

	var drivers []models.Driver
	err := s.db.WithContext(ctx).
		Where("license_expires_at <= ?", horizon).
		Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}

// Update applies a partial patch to a driver
func (s *DriverService) Update(ctx context.Context, id string, in UpdateDriverInput, now time.Time) (*models.Driver, error) {
	updates := map[string]interface{}{"updated_at": now}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.LicenseExpiresAt != nil {
		updates["license_expires_at"] = *in.LicenseExpiresAt
	}
	if in.LicenseCategory != nil {
		updates["license_category"] = *in.LicenseCategory
	}
	if in.SafetyScore != nil {
		updates["safety_score"] = *in.SafetyScore
	}

	var driver models.Driver
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Driver{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("Driver not found", "DRIVER_NOT_FOUND")
		}
		return tx.Where("id = ?", id).First(&driver).Error
	})
	if err != nil {
		return nil, err
	}
	return &driver, nil
}
