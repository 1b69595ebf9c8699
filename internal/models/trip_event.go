package models

import (
	"time"

	"gorm.io/gorm"
)

// TripEvent is an append-only audit row written as part of every lifecycle
// transition. It is observability only - business logic never reads it.
type TripEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	TripID    string    `json:"tripId" gorm:"index;size:64;not null"`
	EventType string    `json:"eventType" gorm:"not null"`
	Message   string    `json:"message" gorm:"not null"`
	ActorRole *string   `json:"actorRole" gorm:"type:varchar(16)"`
	CreatedAt time.Time `json:"createdAt"`

	Trip *Trip `json:"-" gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
}

// Trip event types
const (
	EventTripCreated    = "trip_created"
	EventTripDispatched = "trip_dispatched"
	EventTripCompleted  = "trip_completed"
	EventTripCancelled  = "trip_cancelled"
)

// BeforeCreate hook to auto-generate the ID
func (e *TripEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID("evt")
	}
	return nil
}
