package services

import (
	"context"
	"testing"
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
)

type fakeAlertRepo struct {
	inserted []domain.Alert
}

func (f *fakeAlertRepo) Insert(_ context.Context, alert *domain.Alert) error {
	alert.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *alert)
	return nil
}

func (f *fakeAlertRepo) ListRecent(_ context.Context, _ int) ([]domain.Alert, error) {
	return f.inserted, nil
}

func (f *fakeAlertRepo) MarkRead(_ context.Context, _ int64) error { return nil }

func (f *fakeAlertRepo) Resolve(_ context.Context, _ int64, _ time.Time) error { return nil }

func TestOfflineSweepRaisesAlerts(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	lastSeen := now.Add(-4 * time.Hour)

	containers := &fakeContainerRepo{stale: []ports.StaleContainer{
		{Container: domain.Container{UID: "c-1", Name: "Container infrared", Active: true}, LastSeen: lastSeen},
		{Container: domain.Container{UID: "c-2", Name: "Container ultrasonic_gray_lid", Active: true}},
	}}
	alerts := &fakeAlertRepo{}
	events := &fakeEventPublisher{}

	sweep := &OfflineSweep{
		Containers: containers,
		Alerts:     alerts,
		Events:     events,
		Window:     2 * time.Hour,
		Now:        func() time.Time { return now },
	}

	raised, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if raised != 2 {
		t.Fatalf("raised = %d, want 2", raised)
	}
	if len(alerts.inserted) != 2 {
		t.Fatalf("inserted = %d, want 2", len(alerts.inserted))
	}
	for _, a := range alerts.inserted {
		if a.Type != domain.AlertSensorOffline {
			t.Errorf("alert type = %s, want %s", a.Type, domain.AlertSensorOffline)
		}
		if a.Severity != domain.SeverityCritical {
			t.Errorf("alert severity = %s, want %s", a.Severity, domain.SeverityCritical)
		}
	}
	if len(events.alerts) != 2 {
		t.Fatalf("published = %d, want 2", len(events.alerts))
	}
}

func TestOfflineSweepNothingStale(t *testing.T) {
	sweep := &OfflineSweep{
		Containers: &fakeContainerRepo{},
		Alerts:     &fakeAlertRepo{},
		Events:     &fakeEventPublisher{},
		Window:     2 * time.Hour,
	}

	raised, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raised != 0 {
		t.Fatalf("raised = %d, want 0", raised)
	}
}
