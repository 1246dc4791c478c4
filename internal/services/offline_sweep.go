package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
)

// OfflineSweep raises sensor_offline alerts for active containers that have
// stopped reporting. It runs on a schedule, not per message, so a dead sensor
// is noticed even when no telemetry arrives at all.
type OfflineSweep struct {
	Containers ports.ContainerRepository
	Alerts     ports.AlertRepository
	Events     ports.EventPublisher
	Window     time.Duration
	Now        func() time.Time
}

func (s *OfflineSweep) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Run performs one sweep and returns the number of alerts raised.
func (s *OfflineSweep) Run(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.Window)

	stale, err := s.Containers.ListStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("offline sweep: list stale containers: %w", err)
	}

	raised := 0
	for _, sc := range stale {
		alert := domain.NewOfflineAlert(sc.Container, sc.LastSeen, now)
		if err := s.Alerts.Insert(ctx, &alert); err != nil {
			return raised, fmt.Errorf("offline sweep: insert alert for %s: %w", sc.Container.UID, err)
		}
		raised++

		if err := s.Events.PublishAlert(ctx, alert); err != nil {
			log.Printf("publish offline alert failed: container=%s err=%v", sc.Container.UID, err)
		}
	}

	return raised, nil
}
