package services

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/fleetflow/fleetflow-backend/internal/models"
)

// AnalyticsService serves the read-only rollups: dashboard counters, the
// per-vehicle finance report and expense listings. No state transitions here.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// DashboardMetrics are the landing-page counters
type DashboardMetrics struct {
	ActiveFleet       int64   `json:"activeFleet"`
	MaintenanceAlerts int64   `json:"maintenanceAlerts"`
	UtilizationRate   float64 `json:"utilizationRate"`
	PendingCargo      int64   `json:"pendingCargo"`
}

// VehicleFinanceMetrics is the per-vehicle finance rollup
type VehicleFinanceMetrics struct {
	VehicleID            string   `json:"vehicleId"`
	Plate                string   `json:"plate"`
	Name                 string   `json:"name"`
	Model                string   `json:"model"`
	DistanceKm           int      `json:"distanceKm"`
	Liters               float64  `json:"liters"`
	FuelCost             float64  `json:"fuelCost"`
	MaintenanceCost      float64  `json:"maintenanceCost"`
	TotalOperationalCost float64  `json:"totalOperationalCost"`
	FuelEfficiencyKmPerL *float64 `json:"fuelEfficiencyKmPerL"`
	Revenue              float64  `json:"revenue"`
	AcquisitionCost      *float64 `json:"acquisitionCost"`
	ROI                  *float64 `json:"roi"`
	ROIMeta              string   `json:"roiMeta"`
}

// ExpenseReport is the expense listing plus its grand total
type ExpenseReport struct {
	Items []models.Expense `json:"items"`
	Total float64          `json:"total"`
}

// VehicleKpis is the legacy KPI block kept for old frontend calls
type VehicleKpis struct {
	TotalVehicles  int64 `json:"totalVehicles"`
	InShop         int64 `json:"inShop"`
	Active         int64 `json:"active"`
	AverageMileage int64 `json:"averageMileage"`
}

// GetDashboardMetrics returns fleet-level counters for the dashboard
func (s *AnalyticsService) GetDashboardMetrics(ctx context.Context) (*DashboardMetrics, error) {
	db := s.db.WithContext(ctx)

	var activeFleet, maintenanceAlerts, operationalFleet, pendingCargo int64

	if err := db.Model(&models.Vehicle{}).Where("status = ?", models.VehicleStatusOnTrip).Count(&activeFleet).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Vehicle{}).Where("status = ?", models.VehicleStatusInShop).Count(&maintenanceAlerts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Vehicle{}).Where("status <> ?", models.VehicleStatusRetired).Count(&operationalFleet).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Trip{}).Where("status = ? AND cargo_weight_kg > 0", models.TripStatusDraft).Count(&pendingCargo).Error; err != nil {
		return nil, err
	}

	utilization := 0.0
	if operationalFleet > 0 {
		utilization = math.Round(float64(activeFleet)/float64(operationalFleet)*10000) / 100
	}

	return &DashboardMetrics{
		ActiveFleet:       activeFleet,
		MaintenanceAlerts: maintenanceAlerts,
		UtilizationRate:   utilization,
		PendingCargo:      pendingCargo,
	}, nil
}

// financeRow mirrors the columns of the finance rollup query
type financeRow struct {
	VehicleID       string
	Plate           string
	Name            string
	Model           string
	AcquisitionCost *float64
	Liters          float64
	FuelCost        float64
	MaintenanceCost float64
	DistanceKm      int
	Revenue         float64
}

// GetFinanceMetrics returns the per-vehicle cost/revenue rollup. Fuel,
// maintenance and completed-trip distance are aggregated per vehicle in one
// query.
func (s *AnalyticsService) GetFinanceMetrics(ctx context.Context) ([]VehicleFinanceMetrics, error) {
	var rows []financeRow
	err := s.db.WithContext(ctx).Raw(`
		with fuel as (
			select fl.vehicle_id,
				coalesce(sum(fl.liters), 0) as liters,
				coalesce(sum(fl.cost), 0) as fuel_cost
			from fuel_logs fl
			group by fl.vehicle_id
		),
		maintenance as (
			select ml.vehicle_id,
				coalesce(sum(ml.cost), 0) as maintenance_cost
			from maintenance_logs ml
			group by ml.vehicle_id
		),
		distance as (
			select t.vehicle_id,
				coalesce(sum(t.distance_km), 0) as distance_km,
				coalesce(sum(t.revenue), 0) as revenue
			from trips t
			where t.status = 'completed'
			group by t.vehicle_id
		)
		select
			v.id as vehicle_id,
			v.plate,
			v.name,
			v.model,
			v.acquisition_cost,
			coalesce(f.liters, 0) as liters,
			coalesce(f.fuel_cost, 0) as fuel_cost,
			coalesce(m.maintenance_cost, 0) as maintenance_cost,
			coalesce(d.distance_km, 0) as distance_km,
			coalesce(d.revenue, 0) as revenue
		from vehicles v
		left join fuel f on f.vehicle_id = v.id
		left join maintenance m on m.vehicle_id = v.id
		left join distance d on d.vehicle_id = v.id
		order by v.created_at desc
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	metrics := make([]VehicleFinanceMetrics, 0, len(rows))
	for _, row := range rows {
		m := VehicleFinanceMetrics{
			VehicleID:            row.VehicleID,
			Plate:                row.Plate,
			Name:                 row.Name,
			Model:                row.Model,
			DistanceKm:           row.DistanceKm,
			Liters:               row.Liters,
			FuelCost:             row.FuelCost,
			MaintenanceCost:      row.MaintenanceCost,
			TotalOperationalCost: row.FuelCost + row.MaintenanceCost,
			Revenue:              row.Revenue,
			AcquisitionCost:      row.AcquisitionCost,
			ROIMeta:              "ROI unavailable until acquisitionCost is provided",
		}

		if row.Liters > 0 {
			efficiency := math.Round(float64(row.DistanceKm)/row.Liters*10000) / 10000
			m.FuelEfficiencyKmPerL = &efficiency
		}

		if row.AcquisitionCost != nil && *row.AcquisitionCost > 0 {
			roi := math.Round((row.Revenue-m.TotalOperationalCost)/ *row.AcquisitionCost*10000) / 10000
			m.ROI = &roi
			m.ROIMeta = "ROI computed as (Revenue - (Maintenance + Fuel)) / AcquisitionCost"
		}

		metrics = append(metrics, m)
	}
	return metrics, nil
}

// ListExpenses returns all expense rows plus their total amount
func (s *AnalyticsService) ListExpenses(ctx context.Context) (*ExpenseReport, error) {
	db := s.db.WithContext(ctx)

	var items []models.Expense
	if err := db.Find(&items).Error; err != nil {
		return nil, err
	}

	var total float64
	err := db.Model(&models.Expense{}).
		Select("coalesce(sum(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, err
	}

	return &ExpenseReport{Items: items, Total: total}, nil
}

// GetVehicleKpis returns the legacy vehicle KPI block
func (s *AnalyticsService) GetVehicleKpis(ctx context.Context) (*VehicleKpis, error) {
	db := s.db.WithContext(ctx)

	var kpis VehicleKpis
	if err := db.Model(&models.Vehicle{}).Count(&kpis.TotalVehicles).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Vehicle{}).Where("status = ?", models.VehicleStatusOnTrip).Count(&kpis.Active).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Vehicle{}).Where("status = ?", models.VehicleStatusInShop).Count(&kpis.InShop).Error; err != nil {
		return nil, err
	}

	var avg float64
	err := db.Model(&models.Vehicle{}).
		Select("coalesce(avg(odometer_km), 0)").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	kpis.AverageMileage = int64(math.Round(avg))

	return &kpis, nil
}
