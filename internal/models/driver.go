package models

import (
	"time"

	"gorm.io/gorm"
)

// Driver represents a licensed fleet driver
type Driver struct {
	ID               string    `json:"id" gorm:"primaryKey;size:64"`
	Name             string    `json:"name" gorm:"not null"`
	LicenseNumber    string    `json:"licenseNumber" gorm:"uniqueIndex;not null"`
	LicenseCategory  string    `json:"licenseCategory" gorm:"type:varchar(16);not null;default:'multi'"`
	LicenseExpiresAt time.Time `json:"licenseExpiresAt" gorm:"index;not null"`
	SafetyScore      int       `json:"safetyScore" gorm:"not null;default:100;check:safety_score >= 0 AND safety_score <= 100"`
	Status           string    `json:"status" gorm:"type:varchar(16);index;not null;default:'off_duty'"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DriverStatus constants
const (
	DriverStatusOnDuty    = "on_duty"
	DriverStatusOffDuty   = "off_duty"
	DriverStatusSuspended = "suspended"
)

// LicenseCategory constants. "multi" matches any vehicle type.
const (
	LicenseCategoryTruck = "truck"
	LicenseCategoryVan   = "van"
	LicenseCategoryBike  = "bike"
	LicenseCategoryMulti = "multi"
)

// IsValidDriverStatus reports whether s is a known driver status
func IsValidDriverStatus(s string) bool {
	switch s {
	case DriverStatusOnDuty, DriverStatusOffDuty, DriverStatusSuspended:
		return true
	}
	return false
}

// IsValidLicenseCategory reports whether c is a known license category
func IsValidLicenseCategory(c string) bool {
	switch c {
	case LicenseCategoryTruck, LicenseCategoryVan, LicenseCategoryBike, LicenseCategoryMulti:
		return true
	}
	return false
}

// CanOperate reports whether the driver's license category covers the
// given vehicle type
func (d *Driver) CanOperate(vehicleType string) bool {
	return d.LicenseCategory == LicenseCategoryMulti || d.LicenseCategory == vehicleType
}

// BeforeCreate hook to auto-generate the ID
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID("drv")
	}
	if d.LicenseCategory == "" {
		d.LicenseCategory = LicenseCategoryMulti
	}
	if d.Status == "" {
		d.Status = DriverStatusOffDuty
	}
	return nil
}
