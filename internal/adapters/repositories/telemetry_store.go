package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smart-waste-service/internal/platform/obs"
	"smart-waste-service/internal/ports"
)

// SQL-backed implementation of the TelemetryStore port. Every accepted
// message is applied in one transaction: the container upsert, the reading
// insert, and any triggered alerts commit together or not at all.
type SqlTelemetryStore struct{ DB *sql.DB }

func NewSqlTelemetryStore(db *sql.DB) *SqlTelemetryStore {
	return &SqlTelemetryStore{DB: db}
}

func (s *SqlTelemetryStore) ApplyReading(ctx context.Context, unit ports.ReadingUnit) (err error) {
	if s.DB == nil {
		return errors.New("telemetry store: DB is nil")
	}
	defer obs.Time(ctx, "sql.ApplyReading")(&err)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply reading: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The upsert never overwrites name or location of an existing container;
	// those are provisioned out-of-band.
	upsertQuery := `
	INSERT INTO containers (
		uid,
		name,
		lat,
		lon,
		active,
		fill_level,
		last_updated
	)
	VALUES (?, ?, ?, ?, 1, ?, ?)
	ON CONFLICT(uid) DO UPDATE SET
		fill_level = excluded.fill_level,
		last_updated = excluded.last_updated;
	`
	c := unit.Container
	var lat, lon any
	if c.Location != nil {
		lat, lon = c.Location.Lat, c.Location.Lon
	}
	if _, err := tx.ExecContext(ctx, upsertQuery,
		c.UID, c.Name, lat, lon, c.FillLevel, fmtTime(c.LastUpdated)); err != nil {
		return fmt.Errorf("apply reading: upsert container %s: %w", c.UID, err)
	}

	insertReadingQuery := `
	INSERT INTO sensor_readings (
		container_uid,
		gateway_id,
		n_seq,
		rssi,
		battery_pct,
		distance_cm,
		ts,
		received_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	r := unit.Reading
	if _, err := tx.ExecContext(ctx, insertReadingQuery,
		r.ContainerUID, r.GatewayID, r.NSeq, r.RSSI, r.BatteryPct,
		r.DistanceCm, r.Timestamp, fmtTime(r.ReceivedAt)); err != nil {
		return fmt.Errorf("apply reading: insert reading for %s: %w", r.ContainerUID, err)
	}

	if len(unit.Alerts) > 0 {
		insertAlertQuery := `
		INSERT INTO alerts (
			type,
			severity,
			container_uid,
			title,
			message,
			created_at
		)
		VALUES (?, ?, ?, ?, ?, ?);
		`
		stmt, err := tx.PrepareContext(ctx, insertAlertQuery)
		if err != nil {
			return fmt.Errorf("apply reading: prepare alert insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range unit.Alerts {
			if _, err := stmt.ExecContext(ctx,
				a.Type, a.Severity, a.ContainerUID, a.Title, a.Message, fmtTime(a.CreatedAt)); err != nil {
				return fmt.Errorf("apply reading: insert %s alert for %s: %w", a.Type, a.ContainerUID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply reading: commit tx: %w", err)
	}

	return nil
}
