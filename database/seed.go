package database

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/internal/models"
)

func float64Ptr(v float64) *float64 { return &v }

// SeedIfEmpty installs a small demo fleet when the vehicles table is empty.
func SeedIfEmpty(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Vehicle{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("🌱 Seeding demo fleet data...")

	vehicles := []models.Vehicle{
		{
			ID:              "veh-001",
			Name:            "Van",
			Model:           "05",
			Plate:           "FF-1024",
			VehicleType:     models.VehicleTypeVan,
			MaxLoadKg:       500,
			OdometerKm:      78320,
			Region:          "west",
			Status:          models.VehicleStatusAvailable,
			AcquisitionCost: float64Ptr(45000),
		},
		{
			ID:              "veh-002",
			Name:            "Truck",
			Model:           "12",
			Plate:           "FF-1188",
			VehicleType:     models.VehicleTypeTruck,
			MaxLoadKg:       3200,
			OdometerKm:      121402,
			Region:          "west",
			Status:          models.VehicleStatusInShop,
			AcquisitionCost: float64Ptr(92000),
		},
	}
	if err := db.Create(&vehicles).Error; err != nil {
		return err
	}

	drivers := []models.Driver{
		{
			ID:               "drv-001",
			Name:             "Marcus Hill",
			LicenseNumber:    "CA-DL-5521",
			LicenseCategory:  models.LicenseCategoryMulti,
			LicenseExpiresAt: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
			Status:           models.DriverStatusOnDuty,
			SafetyScore:      88,
		},
		{
			ID:               "drv-002",
			Name:             "Angela Ruiz",
			LicenseNumber:    "CA-DL-6710",
			LicenseCategory:  models.LicenseCategoryVan,
			LicenseExpiresAt: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
			Status:           models.DriverStatusOffDuty,
			SafetyScore:      93,
		},
	}
	if err := db.Create(&drivers).Error; err != nil {
		return err
	}

	trip := models.Trip{
		ID:            "trp-001",
		VehicleID:     "veh-001",
		DriverID:      "drv-001",
		CargoWeightKg: 450,
		Origin:        "Los Angeles, CA",
		Destination:   "San Diego, CA",
		ScheduledAt:   time.Now().Add(time.Hour),
		Status:        models.TripStatusDraft,
	}
	return db.Create(&trip).Error
}
