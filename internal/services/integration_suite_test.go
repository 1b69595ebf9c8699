package services_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/database"
	"github.com/fleetflow/fleetflow-backend/internal/models"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("fleetflow_test"),
		tcpostgres.WithUsername("test_user"),
		tcpostgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres testcontainer: %v", err)
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		log.Fatalf("failed to get connection string from container: %v", err)
	}

	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		log.Fatalf("failed to open gorm connection: %v", err)
	}

	if err := database.Migrate(testDB); err != nil {
		_ = pgContainer.Terminate(ctx)
		log.Fatalf("failed to migrate test database: %v", err)
	}

	code := m.Run()

	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("failed to terminate postgres testcontainer: %v", err)
	}
	os.Exit(code)
}

// newVehicle inserts a fresh available van (500 kg, odometer 78320) with a
// unique plate. Tests mutate it through the optional override.
func newVehicle(t *testing.T, override ...func(*models.Vehicle)) *models.Vehicle {
	t.Helper()
	v := &models.Vehicle{
		Name:        "Van",
		Model:       "05",
		Plate:       models.NewID("PL"),
		VehicleType: models.VehicleTypeVan,
		MaxLoadKg:   500,
		OdometerKm:  78320,
		Region:      "west",
		Status:      models.VehicleStatusAvailable,
	}
	for _, fn := range override {
		fn(v)
	}
	if err := testDB.Create(v).Error; err != nil {
		t.Fatalf("create vehicle fixture: %v", err)
	}
	return v
}

// newDriver inserts a fresh on-duty multi-category driver with a licence
// valid for a year.
func newDriver(t *testing.T, override ...func(*models.Driver)) *models.Driver {
	t.Helper()
	d := &models.Driver{
		Name:             "Marcus Hill",
		LicenseNumber:    models.NewID("LIC"),
		LicenseCategory:  models.LicenseCategoryMulti,
		LicenseExpiresAt: time.Now().Add(365 * 24 * time.Hour),
		Status:           models.DriverStatusOnDuty,
		SafetyScore:      88,
	}
	for _, fn := range override {
		fn(d)
	}
	if err := testDB.Create(d).Error; err != nil {
		t.Fatalf("create driver fixture: %v", err)
	}
	return d
}

// newDraftTrip inserts a draft trip (450 kg cargo weight) directly.
func newDraftTrip(t *testing.T, vehicleID, driverID string, override ...func(*models.Trip)) *models.Trip {
	t.Helper()
	trip := &models.Trip{
		VehicleID:     vehicleID,
		DriverID:      driverID,
		CargoWeightKg: 450,
		Origin:        "Los Angeles, CA",
		Destination:   "San Diego, CA",
		ScheduledAt:   time.Now().Add(time.Hour),
		Status:        models.TripStatusDraft,
	}
	for _, fn := range override {
		fn(trip)
	}
	if err := testDB.Create(trip).Error; err != nil {
		t.Fatalf("create trip fixture: %v", err)
	}
	return trip
}

// newCargo inserts a pending shipment.
func newCargo(t *testing.T) *models.CargoShipment {
	t.Helper()
	c := &models.CargoShipment{
		ReferenceCode: models.NewID("REF"),
		WeightKg:      450,
		Region:        "west",
		Status:        models.CargoStatusPending,
	}
	if err := testDB.Create(c).Error; err != nil {
		t.Fatalf("create cargo fixture: %v", err)
	}
	return c
}

func reloadVehicle(t *testing.T, id string) *models.Vehicle {
	t.Helper()
	var v models.Vehicle
	if err := testDB.Where("id = ?", id).First(&v).Error; err != nil {
		t.Fatalf("reload vehicle %s: %v", id, err)
	}
	return &v
}

func reloadTrip(t *testing.T, id string) *models.Trip {
	t.Helper()
	var trip models.Trip
	if err := testDB.Where("id = ?", id).First(&trip).Error; err != nil {
		t.Fatalf("reload trip %s: %v", id, err)
	}
	return &trip
}

func reloadCargo(t *testing.T, id string) *models.CargoShipment {
	t.Helper()
	var c models.CargoShipment
	if err := testDB.Where("id = ?", id).First(&c).Error; err != nil {
		t.Fatalf("reload cargo %s: %v", id, err)
	}
	return &c
}
