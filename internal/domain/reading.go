package domain

import "time"

// Represents one accepted telemetry message from a container sensor.
// Readings are append-only; ordering is by Timestamp per container. NSeq is
// advisory only (gaps and reordering are expected) and is never used for
// ordering, only as a duplicate hint.
type SensorReading struct {
	ID           int64
	ContainerUID string
	GatewayID    string
	NSeq         int
	RSSI         int
	BatteryPct   int
	DistanceCm   int
	Timestamp    int64 // Unix epoch seconds as reported by the sensor
	ReceivedAt   time.Time
}

// SignalQuality bands the RSSI into a human-readable link quality.
func (r SensorReading) SignalQuality() string {
	switch {
	case r.RSSI >= -50:
		return "excellent"
	case r.RSSI >= -60:
		return "good"
	case r.RSSI >= -70:
		return "fair"
	default:
		return "poor"
	}
}

// BatteryBand bands the battery percentage.
func (r SensorReading) BatteryBand() string {
	switch {
	case r.BatteryPct >= 80:
		return "high"
	case r.BatteryPct >= 50:
		return "medium"
	case r.BatteryPct >= 20:
		return "low"
	default:
		return "critical"
	}
}
