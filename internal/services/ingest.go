package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
)

// A validated telemetry message, already parsed out of its topic and payload.
type SensorMessage struct {
	GatewayID string
	SensorUID string
	Payload   SensorPayload
}

// The strict sensor payload. All fields are required on the wire; the broker
// adapter rejects messages missing any of them before they reach here.
type SensorPayload struct {
	UID        string
	NSeq       int
	RSSI       int
	BatteryPct int
	DistanceCm int
	Timestamp  int64
}

// Ingest applies one accepted telemetry message: derive fill level, persist
// the reading and container state as a single unit, evaluate alert rules, and
// fan events out to live subscribers.
type Ingest struct {
	Store       ports.TelemetryStore
	Events      ports.EventPublisher
	Calibration domain.Calibration
	Thresholds  domain.Thresholds
	// Placeholder coordinates for containers first seen via telemetry before
	// provisioning catches up.
	DefaultLocation domain.Coordinate
	SensorTypes     map[string]string
	Now             func() time.Time
}

func (s *Ingest) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ProcessSensorMessage runs the full pipeline for one message. An error means
// nothing was persisted; the caller counts it as failed and moves on.
func (s *Ingest) ProcessSensorMessage(ctx context.Context, msg SensorMessage) error {
	now := s.now()
	fill := domain.FillLevel(msg.Payload.DistanceCm, s.Calibration)

	reading := domain.SensorReading{
		ContainerUID: msg.SensorUID,
		GatewayID:    msg.GatewayID,
		NSeq:         msg.Payload.NSeq,
		RSSI:         msg.Payload.RSSI,
		BatteryPct:   msg.Payload.BatteryPct,
		DistanceCm:   msg.Payload.DistanceCm,
		Timestamp:    msg.Payload.Timestamp,
		ReceivedAt:   now,
	}

	loc := s.DefaultLocation
	container := domain.Container{
		UID:         msg.SensorUID,
		Name:        fmt.Sprintf("Container %s", s.sensorType(msg.SensorUID)),
		Location:    &loc,
		Active:      true,
		FillLevel:   fill,
		LastUpdated: now,
	}

	alerts := s.evaluateAlerts(container, reading, now)

	unit := ports.ReadingUnit{Reading: reading, Container: container, Alerts: alerts}
	if err := s.Store.ApplyReading(ctx, unit); err != nil {
		return fmt.Errorf("process sensor message: apply reading for %s: %w", msg.SensorUID, err)
	}

	// Fan-out happens after commit and is best-effort; a dropped event never
	// rolls back persisted state.
	ev := ports.SensorEvent{
		ContainerUID: msg.SensorUID,
		FillLevel:    fill,
		BatteryPct:   msg.Payload.BatteryPct,
		RSSI:         msg.Payload.RSSI,
		Timestamp:    msg.Payload.Timestamp,
		SensorType:   s.sensorType(msg.SensorUID),
	}
	if err := s.Events.PublishSensorEvent(ctx, ev); err != nil {
		log.Printf("publish sensor event failed: container=%s err=%v", msg.SensorUID, err)
	}
	for _, a := range alerts {
		if err := s.Events.PublishAlert(ctx, a); err != nil {
			log.Printf("publish alert failed: container=%s type=%s err=%v", a.ContainerUID, a.Type, err)
		}
	}

	return nil
}

// evaluateAlerts appends one alert row per rule whose condition holds. Rules
// are independent; a single reading can fire all of them. Repeats are not
// suppressed here.
func (s *Ingest) evaluateAlerts(c domain.Container, r domain.SensorReading, now time.Time) []domain.Alert {
	var alerts []domain.Alert
	for _, rule := range domain.ThresholdRules(s.Thresholds) {
		if !rule.Triggered(c, r) {
			continue
		}
		title, message := rule.Describe(c, r)
		alerts = append(alerts, domain.Alert{
			Type:         rule.Type,
			Severity:     rule.Severity,
			ContainerUID: c.UID,
			Title:        title,
			Message:      message,
			CreatedAt:    now,
		})
	}
	return alerts
}

func (s *Ingest) sensorType(uid string) string {
	if t, ok := s.SensorTypes[uid]; ok {
		return t
	}
	return "unknown"
}
