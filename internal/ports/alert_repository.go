package ports

import (
	"context"
	"time"

	"smart-waste-service/internal/domain"
)

// Port: alert lifecycle persistence. Creation during ingestion goes through
// TelemetryStore so it shares the message transaction; this port covers the
// standalone operations.
type AlertRepository interface {
	Insert(ctx context.Context, alert *domain.Alert) error
	ListRecent(ctx context.Context, limit int) ([]domain.Alert, error)
	MarkRead(ctx context.Context, id int64) error
	Resolve(ctx context.Context, id int64, at time.Time) error
}
