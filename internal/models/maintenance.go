package models

import (
	"time"

	"gorm.io/gorm"
)

// MaintenanceLog records shop work on a vehicle. A log with no ClosedAt is
// "open" and blocks the vehicle from returning to available.
type MaintenanceLog struct {
	ID            string     `json:"id" gorm:"primaryKey;size:64"`
	VehicleID     string     `json:"vehicleId" gorm:"index;size:64;not null"`
	Note          string     `json:"note" gorm:"not null"`
	Cost          float64    `json:"cost" gorm:"not null;default:0;check:cost >= 0"`
	OpenedAt      time.Time  `json:"openedAt" gorm:"not null"`
	ClosedAt      *time.Time `json:"closedAt" gorm:"index"`
	CreatedByRole string     `json:"createdByRole" gorm:"type:varchar(16);not null"`

	Vehicle *Vehicle `json:"-" gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
}

// IsOpen reports whether the log still blocks vehicle availability
func (m *MaintenanceLog) IsOpen() bool {
	return m.ClosedAt == nil
}

// BeforeCreate hook to auto-generate the ID and stamp OpenedAt
func (m *MaintenanceLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID("mnt")
	}
	if m.OpenedAt.IsZero() {
		m.OpenedAt = time.Now()
	}
	return nil
}
