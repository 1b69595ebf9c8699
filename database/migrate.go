package database

import (
	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/internal/models"
)

// Migrate runs schema migrations: GORM AutoMigrate for tables, columns,
// checks and foreign keys, then the partial unique indexes AutoMigrate cannot
// express. The partial indexes are the structural backstop for the "at most
// one dispatched trip per vehicle/driver" invariant - dispatch correctness
// must not depend on application checks alone.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Vehicle{},
		&models.Driver{},
		&models.CargoShipment{},
		&models.Trip{},
		&models.MaintenanceLog{},
		&models.FuelLog{},
		&models.Expense{},
		&models.TripEvent{},
	)
	if err != nil {
		return err
	}

	partialIndexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS trips_dispatched_vehicle_unique_idx
			ON trips (vehicle_id) WHERE status = 'dispatched'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS trips_dispatched_driver_unique_idx
			ON trips (driver_id) WHERE status = 'dispatched'`,
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
