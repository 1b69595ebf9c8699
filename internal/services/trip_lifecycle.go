package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetflow/fleetflow-backend/internal/apperr"
	"github.com/fleetflow/fleetflow-backend/internal/models"
)

// dispatchRetries bounds transparent retries when a concurrent dispatch loses
// the race at commit time. The retry re-runs the whole transaction, so the
// loser re-reads state and surfaces the friendly unavailability error.
const dispatchRetries = 2

// TripService is the trip lifecycle engine. Every transition runs as a single
// database transaction; partial application of a transition is never
// observable. Callers pass the current time explicitly so transitions are
// deterministic under test.
type TripService struct {
	db *gorm.DB
}

// NewTripService creates a new trip lifecycle engine
func NewTripService(db *gorm.DB) *TripService {
	return &TripService{db: db}
}

// CreateTripInput carries the validated fields for a new draft trip
type CreateTripInput struct {
	VehicleID     string    `json:"vehicleId"`
	DriverID      string    `json:"driverId"`
	CargoWeightKg int       `json:"cargoWeightKg"`
	CargoID       *string   `json:"cargoId"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	Revenue       *float64  `json:"revenue"`
}

// CompleteTripInput carries the closing odometer and fuel figures
type CompleteTripInput struct {
	FinalOdometerKm int        `json:"finalOdometerKm"`
	FuelLiters      float64    `json:"fuelLiters"`
	FuelCost        float64    `json:"fuelCost"`
	CompletedAt     *time.Time `json:"completedAt"`
}

// FuelLogInput carries an ad-hoc fuel entry
type FuelLogInput struct {
	Liters   float64    `json:"liters"`
	Cost     float64    `json:"cost"`
	LoggedAt *time.Time `json:"loggedAt"`
}

// ListTrips returns all trips
func (s *TripService) ListTrips(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	if err := s.db.WithContext(ctx).Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

// GetTrip returns a single trip by ID
func (s *TripService) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Trip not found", "TRIP_NOT_FOUND")
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// CreateTrip inserts a trip in draft state. A draft is a plan, not a
// commitment: vehicle and driver status are untouched and availability checks
// are deferred to dispatch.
func (s *TripService) CreateTrip(ctx context.Context, in CreateTripInput, role string) (*models.Trip, error) {
	trip := &models.Trip{
		VehicleID:     in.VehicleID,
		DriverID:      in.DriverID,
		CargoID:       in.CargoID,
		CargoWeightKg: in.CargoWeightKg,
		Origin:        in.Origin,
		Destination:   in.Destination,
		ScheduledAt:   in.ScheduledAt,
		Status:        models.TripStatusDraft,
		Revenue:       in.Revenue,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Vehicle{}, in.VehicleID, "Vehicle not found", "VEHICLE_NOT_FOUND"); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.Driver{}, in.DriverID, "Driver not found", "DRIVER_NOT_FOUND"); err != nil {
			return err
		}
		if in.CargoID != nil {
			if err := ensureExists(tx, &models.CargoShipment{}, *in.CargoID, "Cargo shipment not found", "CARGO_NOT_FOUND"); err != nil {
				return err
			}
		}

		if err := tx.Create(trip).Error; err != nil {
			return err
		}
		return appendTripEvent(tx, trip.ID, models.EventTripCreated, "Trip created in draft state", role)
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// DispatchTrip commits a draft trip: the vehicle and driver become bound to
// it and no other trip may hold either until this one leaves the dispatched
// state. All preconditions and writes execute in one transaction with the
// vehicle and driver rows locked; the partial unique indexes on dispatched
// trips reject any concurrent winner that slipped past the in-transaction
// checks.
func (s *TripService) DispatchTrip(ctx context.Context, id, role string, now time.Time) (*models.Trip, error) {
	var trip *models.Trip
	var err error
	for attempt := 0; ; attempt++ {
		trip, err = s.dispatchOnce(ctx, id, role, now)
		if err == nil || attempt >= dispatchRetries || !isRetryableConflict(err) {
			return trip, err
		}
	}
}

func (s *TripService) dispatchOnce(ctx context.Context, id, role string, now time.Time) (*models.Trip, error) {
	var trip models.Trip

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockByID(tx, &trip, id, "Trip not found", "TRIP_NOT_FOUND"); err != nil {
			return err
		}
		if trip.Status != models.TripStatusDraft {
			return apperr.Conflict("Only draft trips can be dispatched", "INVALID_TRIP_STATE")
		}

		var vehicle models.Vehicle
		if err := lockByID(tx, &vehicle, trip.VehicleID, "Vehicle not found", "VEHICLE_NOT_FOUND"); err != nil {
			return err
		}
		var driver models.Driver
		if err := lockByID(tx, &driver, trip.DriverID, "Driver not found", "DRIVER_NOT_FOUND"); err != nil {
			return err
		}

		if err := validateDispatch(&trip, &vehicle, &driver, now); err != nil {
			return err
		}

		// Busy predicates re-checked inside the transaction; the partial
		// unique indexes remain the backstop at commit time.
		busy, err := dispatchedTripExists(tx, "vehicle_id", trip.VehicleID)
		if err != nil {
			return err
		}
		if busy {
			return apperr.Conflict("Vehicle already on dispatched trip", "VEHICLE_UNAVAILABLE")
		}
		busy, err = dispatchedTripExists(tx, "driver_id", trip.DriverID)
		if err != nil {
			return err
		}
		if busy {
			return apperr.Conflict("Driver already on dispatched trip", "DRIVER_UNAVAILABLE")
		}

		startOdometer := vehicle.OdometerKm
		trip.Status = models.TripStatusDispatched
		trip.DispatchedAt = &now
		trip.StartOdometerKm = &startOdometer
		if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Updates(map[string]interface{}{
			"status":            models.TripStatusDispatched,
			"dispatched_at":     now,
			"start_odometer_km": startOdometer,
			"updated_at":        now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Vehicle{}).Where("id = ?", trip.VehicleID).
			Updates(map[string]interface{}{"status": models.VehicleStatusOnTrip, "updated_at": now}).Error; err != nil {
			return err
		}

		if trip.CargoID != nil {
			if err := tx.Model(&models.CargoShipment{}).Where("id = ?", *trip.CargoID).
				Update("status", models.CargoStatusAssigned).Error; err != nil {
				return err
			}
		}

		return appendTripEvent(tx, trip.ID, models.EventTripDispatched, "Trip dispatched", role)
	})
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// CompleteTrip closes a dispatched trip: records the final odometer, computed
// distance, fuel spend (fuel log + mirrored expense) and releases the vehicle
// to available unless an open maintenance log holds it in the shop. Returns
// the updated trip and the created fuel log.
func (s *TripService) CompleteTrip(ctx context.Context, id string, in CompleteTripInput, role string, now time.Time) (*models.Trip, *models.FuelLog, error) {
	var trip models.Trip
	var fuel models.FuelLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockByID(tx, &trip, id, "Trip not found", "TRIP_NOT_FOUND"); err != nil {
			return err
		}
		if trip.Status != models.TripStatusDispatched {
			return apperr.Conflict("Only dispatched trips can be completed", "INVALID_TRIP_STATE")
		}

		var vehicle models.Vehicle
		if err := lockByID(tx, &vehicle, trip.VehicleID, "Vehicle not found", "VEHICLE_NOT_FOUND"); err != nil {
			return err
		}

		if trip.StartOdometerKm == nil {
			return apperr.Conflict("Trip start odometer missing", "INVALID_TRIP_STATE")
		}
		if in.FinalOdometerKm < *trip.StartOdometerKm {
			return apperr.Unprocessable("Final odometer cannot be lower than start", "INVALID_ODOMETER")
		}

		completedAt := now
		if in.CompletedAt != nil {
			completedAt = *in.CompletedAt
		}
		distanceKm := in.FinalOdometerKm - *trip.StartOdometerKm

		trip.Status = models.TripStatusCompleted
		trip.CompletedAt = &completedAt
		trip.EndOdometerKm = &in.FinalOdometerKm
		trip.DistanceKm = &distanceKm
		if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Updates(map[string]interface{}{
			"status":          models.TripStatusCompleted,
			"completed_at":    completedAt,
			"end_odometer_km": in.FinalOdometerKm,
			"distance_km":     distanceKm,
			"updated_at":      now,
		}).Error; err != nil {
			return err
		}

		nextStatus, err := vehicleStatusAfterRelease(tx, trip.VehicleID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Vehicle{}).Where("id = ?", trip.VehicleID).Updates(map[string]interface{}{
			"odometer_km": in.FinalOdometerKm,
			"status":      nextStatus,
			"updated_at":  now,
		}).Error; err != nil {
			return err
		}

		fuel = models.FuelLog{
			TripID:    trip.ID,
			VehicleID: trip.VehicleID,
			Liters:    in.FuelLiters,
			Cost:      in.FuelCost,
			LoggedAt:  completedAt,
		}
		if err := tx.Create(&fuel).Error; err != nil {
			return err
		}

		notes := fmt.Sprintf("Fuel log: %gL", in.FuelLiters)
		expense := models.Expense{
			Type:      models.ExpenseTypeFuel,
			VehicleID: trip.VehicleID,
			TripID:    &trip.ID,
			Amount:    in.FuelCost,
			Notes:     &notes,
			Date:      completedAt,
		}
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}

		if trip.CargoID != nil {
			if err := tx.Model(&models.CargoShipment{}).Where("id = ?", *trip.CargoID).
				Update("status", models.CargoStatusCompleted).Error; err != nil {
				return err
			}
		}

		message := fmt.Sprintf("Trip completed; distance %d km", distanceKm)
		return appendTripEvent(tx, trip.ID, models.EventTripCompleted, message, role)
	})
	if err != nil {
		return nil, nil, err
	}
	return &trip, &fuel, nil
}

// CancelTrip cancels a draft or dispatched trip. Cancelling a dispatched trip
// releases the vehicle; driver status is untouched since driver-busy is
// derived from dispatched trips. An attached shipment reverts to pending, but
// only from assigned so a shipment already claimed by another trip is left
// alone.
func (s *TripService) CancelTrip(ctx context.Context, id, role string, now time.Time) (*models.Trip, error) {
	var trip models.Trip

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockByID(tx, &trip, id, "Trip not found", "TRIP_NOT_FOUND"); err != nil {
			return err
		}
		if trip.Status == models.TripStatusCompleted {
			return apperr.Conflict("Completed trips cannot be cancelled", "INVALID_TRIP_STATE")
		}
		if trip.Status == models.TripStatusCancelled {
			return apperr.Conflict("Trip already cancelled", "INVALID_TRIP_STATE")
		}

		wasDispatched := trip.Status == models.TripStatusDispatched

		trip.Status = models.TripStatusCancelled
		trip.CancelledAt = &now
		if err := tx.Model(&models.Trip{}).Where("id = ?", trip.ID).Updates(map[string]interface{}{
			"status":       models.TripStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}).Error; err != nil {
			return err
		}

		if wasDispatched {
			nextStatus, err := vehicleStatusAfterRelease(tx, trip.VehicleID)
			if err != nil {
				return err
			}
			if err := tx.Model(&models.Vehicle{}).Where("id = ?", trip.VehicleID).
				Updates(map[string]interface{}{"status": nextStatus, "updated_at": now}).Error; err != nil {
				return err
			}
		}

		if trip.CargoID != nil {
			if err := tx.Model(&models.CargoShipment{}).
				Where("id = ? AND status = ?", *trip.CargoID, models.CargoStatusAssigned).
				Update("status", models.CargoStatusPending).Error; err != nil {
				return err
			}
		}

		return appendTripEvent(tx, trip.ID, models.EventTripCancelled, "Trip cancelled", role)
	})
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// AddFuelLog records an ad-hoc fuel entry against a trip, usable mid-trip.
// The entry is mirrored as a fuel expense; trip status is unaffected.
func (s *TripService) AddFuelLog(ctx context.Context, tripID string, in FuelLogInput, now time.Time) (*models.FuelLog, error) {
	var fuel models.FuelLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		err := tx.Where("id = ?", tripID).First(&trip).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Trip not found", "TRIP_NOT_FOUND")
		}
		if err != nil {
			return err
		}

		loggedAt := now
		if in.LoggedAt != nil {
			loggedAt = *in.LoggedAt
		}

		fuel = models.FuelLog{
			TripID:    trip.ID,
			VehicleID: trip.VehicleID,
			Liters:    in.Liters,
			Cost:      in.Cost,
			LoggedAt:  loggedAt,
		}
		if err := tx.Create(&fuel).Error; err != nil {
			return err
		}

		notes := fmt.Sprintf("Fuel log: %gL", in.Liters)
		expense := models.Expense{
			Type:      models.ExpenseTypeFuel,
			VehicleID: trip.VehicleID,
			TripID:    &trip.ID,
			Amount:    in.Cost,
			Notes:     &notes,
			Date:      loggedAt,
		}
		return tx.Create(&expense).Error
	})
	if err != nil {
		return nil, err
	}
	return &fuel, nil
}

// validateDispatch runs the eligibility checks that need no further queries:
// vehicle availability, driver duty status, license validity, category match
// and load capacity. Checks fail in this order, each with its own error.
func validateDispatch(trip *models.Trip, vehicle *models.Vehicle, driver *models.Driver, now time.Time) error {
	if vehicle.Status != models.VehicleStatusAvailable {
		return apperr.Conflict("Vehicle is unavailable", "VEHICLE_UNAVAILABLE")
	}
	if driver.Status != models.DriverStatusOnDuty {
		return apperr.Conflict("Driver is unavailable", "DRIVER_UNAVAILABLE")
	}
	if !driver.LicenseExpiresAt.After(now) {
		return apperr.Unprocessable("Driver license expired", "LICENSE_EXPIRED")
	}
	if !driver.CanOperate(vehicle.VehicleType) {
		return apperr.Unprocessable("Driver category does not match vehicle type", "DRIVER_UNAVAILABLE")
	}
	if trip.CargoWeightKg > vehicle.MaxLoadKg {
		return apperr.Unprocessable("Cargo exceeds vehicle max capacity", "CAPACITY_EXCEEDED")
	}
	return nil
}

// vehicleStatusAfterRelease decides where a vehicle lands when a trip lets go
// of it: in the shop while any maintenance log is open, otherwise available.
func vehicleStatusAfterRelease(tx *gorm.DB, vehicleID string) (string, error) {
	open, err := openMaintenanceExists(tx, vehicleID)
	if err != nil {
		return "", err
	}
	if open {
		return models.VehicleStatusInShop, nil
	}
	return models.VehicleStatusAvailable, nil
}

func dispatchedTripExists(tx *gorm.DB, column, id string) (bool, error) {
	var count int64
	err := tx.Model(&models.Trip{}).
		Where(column+" = ? AND status = ?", id, models.TripStatusDispatched).
		Count(&count).Error
	return count > 0, err
}

func openMaintenanceExists(tx *gorm.DB, vehicleID string) (bool, error) {
	var count int64
	err := tx.Model(&models.MaintenanceLog{}).
		Where("vehicle_id = ? AND closed_at IS NULL", vehicleID).
		Count(&count).Error
	return count > 0, err
}

func appendTripEvent(tx *gorm.DB, tripID, eventType, message, role string) error {
	event := models.TripEvent{
		TripID:    tripID,
		EventType: eventType,
		Message:   message,
	}
	if role != "" {
		event.ActorRole = &role
	}
	return tx.Create(&event).Error
}

// lockByID loads a row by primary key with a FOR UPDATE lock, translating a
// missing row into the given not-found error.
func lockByID(tx *gorm.DB, dest interface{}, id, message, code string) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(message, code)
	}
	return err
}

func ensureExists(tx *gorm.DB, model interface{}, id, message, code string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound(message, code)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres duplicate key error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isRetryableConflict reports whether err is a store-level conflict worth one
// more attempt: a unique violation from the dispatched-trip partial indexes
// or a serialization failure.
func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "40001"
}
