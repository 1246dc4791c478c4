package ports

import (
	"context"

	"smart-waste-service/internal/domain"
)

// All persisted side effects of one accepted telemetry message.
type ReadingUnit struct {
	Reading   domain.SensorReading
	Container domain.Container
	Alerts    []domain.Alert
}

// Port: the boundary the ingestion pipeline writes through.
// ApplyReading must apply the whole unit atomically; on failure nothing of the
// message may remain persisted.
type TelemetryStore interface {
	ApplyReading(ctx context.Context, unit ReadingUnit) error
}
