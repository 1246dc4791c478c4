package mqtt

import (
	"encoding/json"
	"fmt"

	"smart-waste-service/internal/services"
)

// Wire schema for the strict sensor-data path. Pointer fields distinguish
// "absent" from zero values so missing required fields can be rejected
// without writing partial state.
type sensorPayload struct {
	UID        *string `json:"uid"`
	NSeq       *int    `json:"nSeq"`
	RSSI       *int    `json:"rssi"`
	BatteryPct *int    `json:"battery_pct"`
	Dist       *int    `json:"dist"`
	Timestamp  *int64  `json:"timestamp"`
}

// decodeSensorPayload validates a raw sensor-data payload. Every field is
// required; any missing one rejects the whole message.
func decodeSensorPayload(raw []byte) (services.SensorPayload, error) {
	var p sensorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return services.SensorPayload{}, fmt.Errorf("decode sensor payload: %w", err)
	}

	missing := ""
	switch {
	case p.UID == nil:
		missing = "uid"
	case p.NSeq == nil:
		missing = "nSeq"
	case p.RSSI == nil:
		missing = "rssi"
	case p.BatteryPct == nil:
		missing = "battery_pct"
	case p.Dist == nil:
		missing = "dist"
	case p.Timestamp == nil:
		missing = "timestamp"
	}
	if missing != "" {
		return services.SensorPayload{}, fmt.Errorf("decode sensor payload: missing required field %q", missing)
	}

	return services.SensorPayload{
		UID:        *p.UID,
		NSeq:       *p.NSeq,
		RSSI:       *p.RSSI,
		BatteryPct: *p.BatteryPct,
		DistanceCm: *p.Dist,
		Timestamp:  *p.Timestamp,
	}, nil
}
