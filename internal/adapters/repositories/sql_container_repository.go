package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/platform/obs"
	"smart-waste-service/internal/ports"
)

// SQL-backed implementation of the ContainerRepository port.
type SqlContainerRepository struct{ DB *sql.DB }

func NewSqlContainerRepository(db *sql.DB) *SqlContainerRepository {
	return &SqlContainerRepository{DB: db}
}

// Return collection candidates: active, located containers at or above the
// fill threshold, one row per qualifying reading, most recent first.
func (s *SqlContainerRepository) ListNeedingCollection(ctx context.Context, fillThreshold int, since time.Time) (out []ports.CollectionCandidate, err error) {
	if s.DB == nil {
		return nil, errors.New("container repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.ListNeedingCollection")(&err)

	query := `
	SELECT
		c.uid,
		c.name,
		c.lat,
		c.lon,
		c.fill_level,
		c.last_updated,
		r.battery_pct,
		r.received_at
	FROM containers c
	JOIN sensor_readings r ON r.container_uid = c.uid
	WHERE c.active = 1
	  AND c.lat IS NOT NULL
	  AND c.lon IS NOT NULL
	  AND c.fill_level >= ?
	  AND r.received_at >= ?
	ORDER BY r.received_at DESC, r.id DESC;
	`
	rows, err := s.DB.QueryContext(ctx, query, fillThreshold, fmtTime(since))
	if err != nil {
		return nil, fmt.Errorf("list needing collection: query: %w", err)
	}
	defer rows.Close()

	out = make([]ports.CollectionCandidate, 0, 32)
	for rows.Next() {
		var (
			c           domain.Container
			lat, lon    float64
			lastUpdated string
			batteryPct  int
			observedAt  string
		)
		if err := rows.Scan(&c.UID, &c.Name, &lat, &lon, &c.FillLevel, &lastUpdated, &batteryPct, &observedAt); err != nil {
			return nil, fmt.Errorf("list needing collection: scan row: %w", err)
		}
		c.Active = true
		c.Location = &domain.Coordinate{Lat: lat, Lon: lon}
		c.LastUpdated = parseTime(lastUpdated)
		out = append(out, ports.CollectionCandidate{
			Container:  c,
			BatteryPct: batteryPct,
			ObservedAt: parseTime(observedAt),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list needing collection: row iteration: %w", err)
	}

	return out, nil
}

// Return active containers whose newest reading is older than cutoff,
// including containers that never reported at all.
func (s *SqlContainerRepository) ListStale(ctx context.Context, cutoff time.Time) (out []ports.StaleContainer, err error) {
	if s.DB == nil {
		return nil, errors.New("container repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.ListStale")(&err)

	query := `
	SELECT
		c.uid,
		c.name,
		c.lat,
		c.lon,
		c.fill_level,
		c.last_updated,
		COALESCE(MAX(r.received_at), '') AS last_seen
	FROM containers c
	LEFT JOIN sensor_readings r ON r.container_uid = c.uid
	WHERE c.active = 1
	GROUP BY c.uid
	HAVING last_seen < ?
	ORDER BY c.uid;
	`
	rows, err := s.DB.QueryContext(ctx, query, fmtTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("list stale: query: %w", err)
	}
	defer rows.Close()

	out = make([]ports.StaleContainer, 0, 16)
	for rows.Next() {
		var (
			c           domain.Container
			lat, lon    sql.NullFloat64
			lastUpdated string
			lastSeen    string
		)
		if err := rows.Scan(&c.UID, &c.Name, &lat, &lon, &c.FillLevel, &lastUpdated, &lastSeen); err != nil {
			return nil, fmt.Errorf("list stale: scan row: %w", err)
		}
		c.Active = true
		if lat.Valid && lon.Valid {
			c.Location = &domain.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
		}
		c.LastUpdated = parseTime(lastUpdated)
		out = append(out, ports.StaleContainer{
			Container: c,
			LastSeen:  parseTime(lastSeen),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stale: row iteration: %w", err)
	}

	return out, nil
}
