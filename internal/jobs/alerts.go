package jobs

import (
	"context"
	"log"
	"time"

	"github.com/fleetflow/fleetflow-backend/internal/services"
)

// AlertJob runs the periodic fleet checks: licences about to expire and
// maintenance logs left open too long. Findings are logged for the ops
// channel to pick up.
type AlertJob struct {
	drivers   *services.DriverService
	vehicles  *services.VehicleService
	stopChan  chan struct{}
	isRunning bool
}

// NewAlertJob creates a new alert job scheduler
func NewAlertJob(drivers *services.DriverService, vehicles *services.VehicleService) *AlertJob {
	return &AlertJob{
		drivers:  drivers,
		vehicles: vehicles,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled checks
func (j *AlertJob) Start() {
	if j.isRunning {
		log.Println("Alert jobs already running")
		return
	}
	j.isRunning = true
	log.Println("Starting scheduled alert jobs...")

	go j.scheduleLicenseExpiryCheck()
	go j.scheduleShopBacklogCheck()
}

// Stop halts all scheduled jobs
func (j *AlertJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stopChan)
	log.Println("Alert jobs stopped")
}

// scheduleLicenseExpiryCheck flags drivers whose licence runs out within the
// report horizon. Runs daily.
func (j *AlertJob) scheduleLicenseExpiryCheck() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	j.checkLicenseExpiry()
	for {
		select {
		case <-ticker.C:
			j.checkLicenseExpiry()
		case <-j.stopChan:
			return
		}
	}
}

func (j *AlertJob) checkLicenseExpiry() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	drivers, err := j.drivers.ListExpiring(ctx, 0, now)
	if err != nil {
		log.Printf("License expiry check failed: %v", err)
		return
	}

	for _, d := range drivers {
		days := int(d.LicenseExpiresAt.Sub(now).Hours() / 24)
		if days < 0 {
			log.Printf("⚠️  Driver %s (%s) license EXPIRED on %s", d.Name, d.ID, d.LicenseExpiresAt.Format("2006-01-02"))
		} else {
			log.Printf("⚠️  Driver %s (%s) license expires in %d days", d.Name, d.ID, days)
		}
	}
}

// scheduleShopBacklogCheck reports how many vehicles sit in the shop. Runs
// every six hours.
func (j *AlertJob) scheduleShopBacklogCheck() {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.checkShopBacklog()
		case <-j.stopChan:
			return
		}
	}
}

func (j *AlertJob) checkShopBacklog() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	vehicles, err := j.vehicles.ListInShop(ctx)
	if err != nil {
		log.Printf("Shop backlog check failed: %v", err)
		return
	}
	if len(vehicles) > 0 {
		log.Printf("🔧 %d vehicle(s) currently in the shop", len(vehicles))
	}
}
