package models

import (
	"time"

	"gorm.io/gorm"
)

// CargoShipment represents a cargo load that trips can carry. At most one
// active trip references a shipment at a time by convention.
type CargoShipment struct {
	ID            string `json:"id" gorm:"primaryKey;size:64"`
	ReferenceCode string `json:"referenceCode" gorm:"uniqueIndex;not null"`
	WeightKg      int    `json:"weightKg" gorm:"not null;check:weight_kg >= 0"`
	Region        string `json:"region" gorm:"not null"`
	Status        string `json:"status" gorm:"type:varchar(16);index;not null;default:'pending'"`

	CreatedAt time.Time `json:"createdAt"`
}

// CargoStatus constants
const (
	CargoStatusPending   = "pending"
	CargoStatusAssigned  = "assigned"
	CargoStatusCompleted = "completed"
	CargoStatusCancelled = "cancelled"
)

// BeforeCreate hook to auto-generate the ID
func (c *CargoShipment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID("shp")
	}
	if c.Status == "" {
		c.Status = CargoStatusPending
	}
	return nil
}
