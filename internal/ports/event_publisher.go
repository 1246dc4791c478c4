package ports

import (
	"context"

	"smart-waste-service/internal/domain"
)

// Normalized sensor event pushed to live subscribers after each accepted
// reading.
type SensorEvent struct {
	ContainerUID string `json:"container_uid"`
	FillLevel    int    `json:"fill_level"`
	BatteryPct   int    `json:"battery_pct"`
	RSSI         int    `json:"rssi"`
	Timestamp    int64  `json:"timestamp"`
	SensorType   string `json:"sensor_type"`
}

// Non-sensor traffic seen under the telemetry root (gateway status and the
// like). The payload is decoded JSON when possible, otherwise the raw string
// is preserved; nothing is silently discarded.
type GatewayEvent struct {
	Topic      string `json:"topic"`
	GatewayID  string `json:"gateway_id"`
	Metric     string `json:"metric"`
	Data       any    `json:"data"`
	Raw        string `json:"raw"`
	ReceivedAt int64  `json:"received_at"`
}

// Port: outbound fan-out to live subscribers (dashboards and other
// downstream consumers). Publishing is best-effort and must never affect
// persisted state.
type EventPublisher interface {
	PublishSensorEvent(ctx context.Context, ev SensorEvent) error
	PublishAlert(ctx context.Context, alert domain.Alert) error
	PublishGatewayEvent(ctx context.Context, ev GatewayEvent) error
}
