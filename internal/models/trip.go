package models

import (
	"time"

	"gorm.io/gorm"
)

// Trip represents one unit of dispatch work against a vehicle and driver.
//
// Lifecycle: draft -> dispatched -> completed | cancelled, with
// draft -> cancelled also allowed. The store enforces that at most one trip
// per vehicle and per driver is dispatched at any instant via partial unique
// indexes (see database.Migrate).
type Trip struct {
	ID            string  `json:"id" gorm:"primaryKey;size:64"`
	VehicleID     string  `json:"vehicleId" gorm:"index;size:64;not null"`
	DriverID      string  `json:"driverId" gorm:"index;size:64;not null"`
	CargoID       *string `json:"cargoId" gorm:"size:64"`
	CargoWeightKg int     `json:"cargoWeightKg" gorm:"not null;default:0;check:cargo_weight_kg >= 0"`
	Origin        string  `json:"origin" gorm:"not null"`
	Destination   string  `json:"destination" gorm:"not null"`

	ScheduledAt time.Time `json:"scheduledAt" gorm:"not null"`
	Status      string    `json:"status" gorm:"type:varchar(16);index;not null;default:'draft'"`

	DispatchedAt *time.Time `json:"dispatchedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	CancelledAt  *time.Time `json:"cancelledAt"`

	StartOdometerKm *int     `json:"startOdometerKm"`
	EndOdometerKm   *int     `json:"endOdometerKm"`
	DistanceKm      *int     `json:"distanceKm"`
	Revenue         *float64 `json:"revenue"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Referential policies: vehicles and drivers cannot be deleted while
	// trips reference them; deleting a shipment detaches it from the trip.
	Vehicle *Vehicle       `json:"-" gorm:"foreignKey:VehicleID;constraint:OnDelete:RESTRICT"`
	Driver  *Driver        `json:"-" gorm:"foreignKey:DriverID;constraint:OnDelete:RESTRICT"`
	Cargo   *CargoShipment `json:"-" gorm:"foreignKey:CargoID;constraint:OnDelete:SET NULL"`
}

// TripStatus constants
const (
	TripStatusDraft      = "draft"
	TripStatusDispatched = "dispatched"
	TripStatusCompleted  = "completed"
	TripStatusCancelled  = "cancelled"
)

// tripTransitions is the allowed transition graph. Terminal states have no
// outgoing edges.
var tripTransitions = map[string][]string{
	TripStatusDraft:      {TripStatusDispatched, TripStatusCancelled},
	TripStatusDispatched: {TripStatusCompleted, TripStatusCancelled},
	TripStatusCompleted:  {},
	TripStatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal trip status change
func CanTransition(from, to string) bool {
	allowed, ok := tripTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// BeforeCreate hook to auto-generate the ID
func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID("trp")
	}
	if t.Status == "" {
		t.Status = TripStatusDraft
	}
	return nil
}
