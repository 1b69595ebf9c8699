package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense is an append-only financial record mirroring fuel or maintenance
// spend against a vehicle.
type Expense struct {
	ID               string    `json:"id" gorm:"primaryKey;size:64"`
	Type             string    `json:"type" gorm:"type:varchar(16);index;not null"`
	VehicleID        string    `json:"vehicleId" gorm:"index;size:64;not null"`
	TripID           *string   `json:"tripId" gorm:"index;size:64"`
	MaintenanceLogID *string   `json:"maintenanceLogId" gorm:"size:64"`
	Amount           float64   `json:"amount" gorm:"not null;check:amount >= 0"`
	Notes            *string   `json:"notes"`
	Date             time.Time `json:"date" gorm:"not null"`

	Vehicle        *Vehicle        `json:"-" gorm:"foreignKey:VehicleID;constraint:OnDelete:RESTRICT"`
	Trip           *Trip           `json:"-" gorm:"foreignKey:TripID;constraint:OnDelete:SET NULL"`
	MaintenanceLog *MaintenanceLog `json:"-" gorm:"foreignKey:MaintenanceLogID;constraint:OnDelete:SET NULL"`
}

// ExpenseType constants
const (
	ExpenseTypeFuel        = "fuel"
	ExpenseTypeMaintenance = "maintenance"
)

// BeforeCreate hook to auto-generate the ID
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID("exp")
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return nil
}
