package models

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	if !CanTransition(TripStatusDraft, TripStatusDispatched) {
		t.Fatalf("expected draft -> dispatched allowed")
	}
	if !CanTransition(TripStatusDraft, TripStatusCancelled) {
		t.Fatalf("expected draft -> cancelled allowed")
	}
	if !CanTransition(TripStatusDispatched, TripStatusCompleted) {
		t.Fatalf("expected dispatched -> completed allowed")
	}
	if !CanTransition(TripStatusDispatched, TripStatusCancelled) {
		t.Fatalf("expected dispatched -> cancelled allowed")
	}

	if CanTransition(TripStatusDraft, TripStatusCompleted) {
		t.Fatalf("expected draft -> completed not allowed")
	}
	if CanTransition(TripStatusCompleted, TripStatusDispatched) {
		t.Fatalf("expected no transition out of completed")
	}
	if CanTransition(TripStatusCancelled, TripStatusDraft) {
		t.Fatalf("expected no transition out of cancelled")
	}
	if CanTransition("unknown", TripStatusDispatched) {
		t.Fatalf("expected unknown status to have no transitions")
	}
}

func TestDriverCanOperate(t *testing.T) {
	multi := &Driver{LicenseCategory: LicenseCategoryMulti}
	if !multi.CanOperate(VehicleTypeTruck) || !multi.CanOperate(VehicleTypeBike) {
		t.Fatalf("expected multi license to cover every vehicle type")
	}

	van := &Driver{LicenseCategory: LicenseCategoryVan}
	if !van.CanOperate(VehicleTypeVan) {
		t.Fatalf("expected van license to cover vans")
	}
	if van.CanOperate(VehicleTypeTruck) {
		t.Fatalf("expected van license not to cover trucks")
	}
}

func TestMaintenanceLogIsOpen(t *testing.T) {
	log := &MaintenanceLog{}
	if !log.IsOpen() {
		t.Fatalf("expected log without closedAt to be open")
	}
	now := time.Now()
	log.ClosedAt = &now
	if log.IsOpen() {
		t.Fatalf("expected closed log not to be open")
	}
}
