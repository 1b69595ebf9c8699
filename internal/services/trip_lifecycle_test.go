package services

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fleetflow/fleetflow-backend/internal/apperr"
	"github.com/fleetflow/fleetflow-backend/internal/models"
)

func eligibleFixtures(now time.Time) (*models.Trip, *models.Vehicle, *models.Driver) {
	trip := &models.Trip{
		ID:            "trp-test",
		VehicleID:     "veh-test",
		DriverID:      "drv-test",
		CargoWeightKg: 450,
		Status:        models.TripStatusDraft,
	}
	vehicle := &models.Vehicle{
		ID:          "veh-test",
		VehicleType: models.VehicleTypeVan,
		MaxLoadKg:   500,
		OdometerKm:  78320,
		Status:      models.VehicleStatusAvailable,
	}
	driver := &models.Driver{
		ID:               "drv-test",
		LicenseCategory:  models.LicenseCategoryMulti,
		LicenseExpiresAt: now.Add(365 * 24 * time.Hour),
		Status:           models.DriverStatusOnDuty,
	}
	return trip, vehicle, driver
}

func assertAppError(t *testing.T, err error, wantStatus int, wantCode string) {
	t.Helper()
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %v", err)
	}
	if appErr.StatusCode != wantStatus || appErr.Code != wantCode {
		t.Fatalf("expected %d/%s, got %d/%s", wantStatus, wantCode, appErr.StatusCode, appErr.Code)
	}
}

func TestValidateDispatchEligible(t *testing.T) {
	now := time.Now()
	trip, vehicle, driver := eligibleFixtures(now)
	if err := validateDispatch(trip, vehicle, driver, now); err != nil {
		t.Fatalf("expected eligible fixtures to pass, got %v", err)
	}
}

func TestValidateDispatchVehicleUnavailable(t *testing.T) {
	now := time.Now()
	trip, vehicle, driver := eligibleFixtures(now)

	for _, status := range []string{models.VehicleStatusOnTrip, models.VehicleStatusInShop, models.VehicleStatusRetired} {
		vehicle.Status = status
		err := validateDispatch(trip, vehicle, driver, now)
		assertAppError(t, err, 409, "VEHICLE_UNAVAILABLE")
	}
}

func TestValidateDispatchDriverOffDuty(t *testing.T) {
	now := time.Now()
	trip, vehicle, driver := eligibleFixtures(now)

	for _, status := range []string{models.DriverStatusOffDuty, models.DriverStatusSuspended} {
		driver.Status = status
		err := validateDispatch(trip, vehicle, driver, now)
		assertAppError(t, err, 409, "DRIVER_UNAVAILABLE")
	}
}

func TestValidateDispatchExpiredLicense(t *testing.T) {
	now := time.Now()
	trip, vehicle, driver := eligibleFixtures(now)

	driver.LicenseExpiresAt = now.Add(-time.Hour)
	err := validateDispatch(trip, vehicle, driver, now)
	assertAppError(t, err, 422, "LICENSE_EXPIRED")

	// Expiry exactly at "now" is not strictly in the future
	driver.LicenseExpiresAt = now
	err = validateDispatch(trip, vehicle, driver, now)
	assertAppError(t, err, 422, "LICENSE_EXPIRED")
}

func TestValidateDispatchCategoryMismatch(t *testing.T) {
	now := time.Now()
	trip, vehicle, driver := eligibleFixtures(now)

	driver.LicenseCategory = models.LicenseCategoryBike
	err := validateDispatch(trip, vehicle, driver, now)
	assertAppError(t, err, 422, "DRIVER_UNAVAILABLE")

	// Exact match passes
	driver.LicenseCategory = models.LicenseCategoryVan
	if err := validateDispatch(trip, vehicle, driver, now); err != nil {
		t.Fatalf("expected exact category match to pass, got %v", err)
	}
}

func TestValidateDispatchCapacityExceeded(t *testing.T) {
	now := time.Now()
	trip, vehicle, driver := eligibleFixtures(now)

	trip.CargoWeightKg = vehicle.MaxLoadKg + 1
	err := validateDispatch(trip, vehicle, driver, now)
	assertAppError(t, err, 422, "CAPACITY_EXCEEDED")

	// Weight exactly at capacity is fine
	trip.CargoWeightKg = vehicle.MaxLoadKg
	if err := validateDispatch(trip, vehicle, driver, now); err != nil {
		t.Fatalf("expected cargo at max load to pass, got %v", err)
	}
}

func TestValidateDispatchCheckOrder(t *testing.T) {
	now := time.Now()
	trip, vehicle, driver := eligibleFixtures(now)

	// Several violations at once: vehicle availability is reported first
	vehicle.Status = models.VehicleStatusInShop
	driver.Status = models.DriverStatusOffDuty
	trip.CargoWeightKg = vehicle.MaxLoadKg + 100

	err := validateDispatch(trip, vehicle, driver, now)
	assertAppError(t, err, 409, "VEHICLE_UNAVAILABLE")
}

func TestIsRetryableConflict(t *testing.T) {
	if !isRetryableConflict(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected unique violation to be retryable")
	}
	if !isRetryableConflict(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("expected serialization failure to be retryable")
	}
	if isRetryableConflict(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected foreign key violation not to be retryable")
	}
	if isRetryableConflict(errors.New("boom")) {
		t.Fatalf("expected plain error not to be retryable")
	}
	if isRetryableConflict(nil) {
		t.Fatalf("expected nil not to be retryable")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("expected 40001 not to be a unique violation")
	}
}
