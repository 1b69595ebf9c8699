package models

import (
	"time"

	"gorm.io/gorm"
)

// FuelLog is an append-only fuel record for a trip. Never mutated after
// creation.
type FuelLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	TripID    string    `json:"tripId" gorm:"index;size:64;not null"`
	VehicleID string    `json:"vehicleId" gorm:"index;size:64;not null"`
	Liters    float64   `json:"liters" gorm:"not null;check:liters > 0"`
	Cost      float64   `json:"cost" gorm:"not null;check:cost >= 0"`
	LoggedAt  time.Time `json:"loggedAt" gorm:"not null"`

	// Fuel logs are owned by their trip and go with it; vehicles with fuel
	// history cannot be deleted.
	Trip    *Trip    `json:"-" gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
	Vehicle *Vehicle `json:"-" gorm:"foreignKey:VehicleID;constraint:OnDelete:RESTRICT"`
}

// BeforeCreate hook to auto-generate the ID
func (f *FuelLog) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewID("fuel")
	}
	if f.LoggedAt.IsZero() {
		f.LoggedAt = time.Now()
	}
	return nil
}
