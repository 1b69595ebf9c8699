package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fleetflow/fleetflow-backend/internal/models"
	"github.com/fleetflow/fleetflow-backend/internal/services"
)

func TestMaintenanceLifecycle(t *testing.T) {
	ctx := context.Background()
	maint := services.NewMaintenanceService(testDB)
	trips := services.NewTripService(testDB)
	vehicles := services.NewVehicleService(testDB)
	now := time.Now().Truncate(time.Second)

	t.Run("open pulls vehicle into shop and records expense", func(t *testing.T) {
		vehicle := newVehicle(t)

		log, err := maint.Open(ctx, vehicle.ID, services.OpenMaintenanceInput{
			Note: "brake pads worn", Cost: 120, Role: models.RoleSafety,
		}, now)
		if err != nil {
			t.Fatalf("open maintenance: %v", err)
		}
		if log.ClosedAt != nil {
			t.Fatalf("expected open log, got closedAt %v", log.ClosedAt)
		}
		if got := reloadVehicle(t, vehicle.ID); got.Status != models.VehicleStatusInShop {
			t.Fatalf("expected vehicle in shop, got %s", got.Status)
		}

		var expenses []models.Expense
		if err := testDB.Where("maintenance_log_id = ?", log.ID).Find(&expenses).Error; err != nil {
			t.Fatalf("load expenses: %v", err)
		}
		if len(expenses) != 1 || expenses[0].Type != models.ExpenseTypeMaintenance || expenses[0].Amount != 120 {
			t.Fatalf("expected one maintenance expense of 120, got %+v", expenses)
		}
	})

	t.Run("close releases vehicle when nothing else holds it", func(t *testing.T) {
		vehicle := newVehicle(t)
		log, err := maint.Open(ctx, vehicle.ID, services.OpenMaintenanceInput{Note: "oil change", Cost: 40}, now)
		if err != nil {
			t.Fatalf("open: %v", err)
		}

		closed, err := maint.Close(ctx, vehicle.ID, log.ID, now.Add(time.Hour))
		if err != nil {
			t.Fatalf("close: %v", err)
		}
		if closed.ClosedAt == nil {
			t.Fatalf("expected closedAt to be stamped")
		}
		if got := reloadVehicle(t, vehicle.ID); got.Status != models.VehicleStatusAvailable {
			t.Fatalf("expected vehicle available, got %s", got.Status)
		}
	})

	t.Run("second open log keeps vehicle in shop", func(t *testing.T) {
		vehicle := newVehicle(t)
		first, err := maint.Open(ctx, vehicle.ID, services.OpenMaintenanceInput{Note: "tires", Cost: 300}, now)
		if err != nil {
			t.Fatalf("open first: %v", err)
		}
		if _, err := maint.Open(ctx, vehicle.ID, services.OpenMaintenanceInput{Note: "suspension", Cost: 500}, now); err != nil {
			t.Fatalf("open second: %v", err)
		}

		if _, err := maint.Close(ctx, vehicle.ID, first.ID, now.Add(time.Hour)); err != nil {
			t.Fatalf("close first: %v", err)
		}
		if got := reloadVehicle(t, vehicle.ID); got.Status != models.VehicleStatusInShop {
			t.Fatalf("expected vehicle to stay in shop while a log is open, got %s", got.Status)
		}
	})

	t.Run("dispatched trip blocks release on close", func(t *testing.T) {
		vehicle := newVehicle(t)
		trip := newDraftTrip(t, vehicle.ID, newDriver(t).ID)
		if _, err := trips.DispatchTrip(ctx, trip.ID, models.RoleDispatcher, now); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		log, err := maint.Open(ctx, vehicle.ID, services.OpenMaintenanceInput{Note: "engine light", Cost: 80}, now)
		if err != nil {
			t.Fatalf("open: %v", err)
		}

		if _, err := maint.Close(ctx, vehicle.ID, log.ID, now.Add(time.Hour)); err != nil {
			t.Fatalf("close: %v", err)
		}
		if got := reloadVehicle(t, vehicle.ID); got.Status == models.VehicleStatusAvailable {
			t.Fatalf("expected vehicle not to become available while its trip is dispatched")
		}
	})

	t.Run("retired vehicle stays retired on close", func(t *testing.T) {
		vehicle := newVehicle(t)
		log, err := maint.Open(ctx, vehicle.ID, services.OpenMaintenanceInput{Note: "inspection", Cost: 60}, now)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, err := vehicles.OverrideStatus(ctx, vehicle.ID, models.VehicleStatusRetired, now); err != nil {
			t.Fatalf("override status: %v", err)
		}

		if _, err := maint.Close(ctx, vehicle.ID, log.ID, now.Add(time.Hour)); err != nil {
			t.Fatalf("close: %v", err)
		}
		if got := reloadVehicle(t, vehicle.ID); got.Status != models.VehicleStatusRetired {
			t.Fatalf("expected vehicle to stay retired, got %s", got.Status)
		}
	})

	t.Run("close is guarded", func(t *testing.T) {
		vehicle := newVehicle(t)
		other := newVehicle(t)
		log, err := maint.Open(ctx, vehicle.ID, services.OpenMaintenanceInput{Note: "battery", Cost: 90}, now)
		if err != nil {
			t.Fatalf("open: %v", err)
		}

		// Log belongs to a different vehicle
		_, err = maint.Close(ctx, other.ID, log.ID, now)
		requireAppError(t, err, 404, "MAINT_NOT_FOUND")

		if _, err := maint.Close(ctx, vehicle.ID, log.ID, now); err != nil {
			t.Fatalf("close: %v", err)
		}
		_, err = maint.Close(ctx, vehicle.ID, log.ID, now)
		requireAppError(t, err, 409, "MAINT_DONE")
	})
}

func TestDispatchAvailability(t *testing.T) {
	ctx := context.Background()
	avail := services.NewAvailabilityService(testDB)
	trips := services.NewTripService(testDB)
	now := time.Now()

	freeVehicle := newVehicle(t)
	shopVehicle := newVehicle(t, func(v *models.Vehicle) { v.Status = models.VehicleStatusInShop })

	freeDriver := newDriver(t)
	expiredDriver := newDriver(t, func(d *models.Driver) { d.LicenseExpiresAt = now.Add(-time.Hour) })
	offDutyDriver := newDriver(t, func(d *models.Driver) { d.Status = models.DriverStatusOffDuty })

	busyDriver := newDriver(t)
	busyTrip := newDraftTrip(t, newVehicle(t).ID, busyDriver.ID)
	if _, err := trips.DispatchTrip(ctx, busyTrip.ID, models.RoleDispatcher, now); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	snapshot, err := avail.GetDispatchAvailability(ctx, now)
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}

	vehicleIDs := make(map[string]bool, len(snapshot.Vehicles))
	for _, v := range snapshot.Vehicles {
		vehicleIDs[v.ID] = true
	}
	driverIDs := make(map[string]bool, len(snapshot.Drivers))
	for _, d := range snapshot.Drivers {
		driverIDs[d.ID] = true
	}

	if !vehicleIDs[freeVehicle.ID] {
		t.Fatalf("expected available vehicle in snapshot")
	}
	if vehicleIDs[shopVehicle.ID] {
		t.Fatalf("expected in-shop vehicle to be excluded")
	}
	if !driverIDs[freeDriver.ID] {
		t.Fatalf("expected free driver in snapshot")
	}
	if driverIDs[expiredDriver.ID] {
		t.Fatalf("expected expired-license driver to be excluded")
	}
	if driverIDs[offDutyDriver.ID] {
		t.Fatalf("expected off-duty driver to be excluded")
	}
	if driverIDs[busyDriver.ID] {
		t.Fatalf("expected driver on dispatched trip to be excluded")
	}
}

func TestVehicleCreatePlateConflict(t *testing.T) {
	ctx := context.Background()
	vehicles := services.NewVehicleService(testDB)

	plate := strings.ToUpper(models.NewID("PL"))
	first, err := vehicles.Create(ctx, services.CreateVehicleInput{
		Name: "Truck", Model: "12", Plate: plate,
		VehicleType: models.VehicleTypeTruck, MaxLoadKg: 3200, OdometerKm: 121402, Region: "west",
	})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	if first.Status != models.VehicleStatusAvailable {
		t.Fatalf("expected new vehicle to start available, got %s", first.Status)
	}

	_, err = vehicles.Create(ctx, services.CreateVehicleInput{
		Name: "Truck", Model: "12", Plate: plate,
		VehicleType: models.VehicleTypeTruck, MaxLoadKg: 3200, OdometerKm: 0, Region: "east",
	})
	requireAppError(t, err, 409, "PLATE_CONFLICT")
}
