package events

import (
	"context"
	"log"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
)

// LogPublisher is the fallback sink when no redis address is configured.
// Events end up in the process log instead of being dropped.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) PublishSensorEvent(_ context.Context, ev ports.SensorEvent) error {
	log.Printf("event: sensor container=%s fill=%d battery=%d rssi=%d",
		ev.ContainerUID, ev.FillLevel, ev.BatteryPct, ev.RSSI)
	return nil
}

func (LogPublisher) PublishAlert(_ context.Context, alert domain.Alert) error {
	log.Printf("event: alert type=%s severity=%s container=%s title=%q",
		alert.Type, alert.Severity, alert.ContainerUID, alert.Title)
	return nil
}

func (LogPublisher) PublishGatewayEvent(_ context.Context, ev ports.GatewayEvent) error {
	log.Printf("event: gateway topic=%s metric=%s", ev.Topic, ev.Metric)
	return nil
}
