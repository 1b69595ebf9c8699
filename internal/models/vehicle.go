package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Vehicle represents a physical fleet asset (truck, van or bike)
type Vehicle struct {
	ID              string   `json:"id" gorm:"primaryKey;size:64"`
	Name            string   `json:"name" gorm:"not null"`
	Model           string   `json:"model" gorm:"not null"`
	Plate           string   `json:"plate" gorm:"uniqueIndex;not null"` // registration plate - unique
	VehicleType     string   `json:"vehicleType" gorm:"type:varchar(16);not null"`
	MaxLoadKg       int      `json:"maxLoadKg" gorm:"not null;check:max_load_kg > 0"`
	OdometerKm      int      `json:"odometerKm" gorm:"not null;default:0;check:odometer_km >= 0"`
	Region          string   `json:"region" gorm:"index;not null"`
	Status          string   `json:"status" gorm:"type:varchar(16);index;not null;default:'available'"`
	AcquisitionCost *float64 `json:"acquisitionCost"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Vehicle type constants
const (
	VehicleTypeTruck = "truck"
	VehicleTypeVan   = "van"
	VehicleTypeBike  = "bike"
)

// VehicleStatus constants. Status is only ever written by the trip and
// maintenance lifecycles, plus the administrative override endpoint.
const (
	VehicleStatusAvailable = "available"
	VehicleStatusOnTrip    = "on_trip"
	VehicleStatusInShop    = "in_shop"
	VehicleStatusRetired   = "retired"
)

// IsValidVehicleType reports whether t is a known vehicle type
func IsValidVehicleType(t string) bool {
	switch t {
	case VehicleTypeTruck, VehicleTypeVan, VehicleTypeBike:
		return true
	}
	return false
}

// IsValidVehicleStatus reports whether s is a known vehicle status
func IsValidVehicleStatus(s string) bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusOnTrip, VehicleStatusInShop, VehicleStatusRetired:
		return true
	}
	return false
}

// BeforeCreate hook to auto-generate the ID and normalize the plate
func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = NewID("veh")
	}

	// Normalize plate (remove spaces, convert to uppercase)
	v.Plate = strings.ToUpper(strings.ReplaceAll(v.Plate, " ", ""))

	if v.Status == "" {
		v.Status = VehicleStatusAvailable
	}
	return nil
}
