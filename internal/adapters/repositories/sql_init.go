package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createContainersQuery := `
	CREATE TABLE IF NOT EXISTS containers (
		uid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat REAL,
		lon REAL,
		active INTEGER NOT NULL DEFAULT 1,
		fill_level INTEGER NOT NULL DEFAULT 0,
		last_updated TEXT NOT NULL DEFAULT ''
	);
	`

	createReadingsQuery := `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		container_uid TEXT NOT NULL,
		gateway_id TEXT NOT NULL,
		n_seq INTEGER NOT NULL,
		rssi INTEGER NOT NULL,
		battery_pct INTEGER NOT NULL,
		distance_cm INTEGER NOT NULL,
		ts INTEGER NOT NULL,
		received_at TEXT NOT NULL
	);
	`

	createAlertsQuery := `
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		container_uid TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read INTEGER NOT NULL DEFAULT 0,
		is_resolved INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		resolved_at TEXT
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		total_distance_km REAL NOT NULL,
		estimated_minutes INTEGER NOT NULL,
		actual_minutes INTEGER,
		progress INTEGER NOT NULL DEFAULT 0,
		start_time TEXT,
		end_time TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	createWaypointsQuery := `
	CREATE TABLE IF NOT EXISTS route_waypoints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		route_id INTEGER NOT NULL REFERENCES routes(id),
		type TEXT NOT NULL,
		order_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		container_uid TEXT NOT NULL DEFAULT '',
		fill_level INTEGER NOT NULL DEFAULT 0,
		battery_pct INTEGER NOT NULL DEFAULT 0,
		priority TEXT NOT NULL DEFAULT '',
		collected INTEGER NOT NULL DEFAULT 0,
		collected_at TEXT
	);
	`

	createReadingsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_sensor_readings_container_received
	ON sensor_readings(container_uid, received_at DESC);
	`

	createAlertsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_alerts_created
	ON alerts(created_at DESC);
	`

	createWaypointsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_waypoints_route_order
	ON route_waypoints(route_id, order_index);
	`

	statements := []string{
		createContainersQuery,
		createReadingsQuery,
		createAlertsQuery,
		createRoutesQuery,
		createWaypointsQuery,
		createReadingsIndexQuery,
		createAlertsIndexQuery,
		createWaypointsIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ContainerSeed struct {
	UID  string   `json:"uid"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

// Populate the containers table from a JSON provisioning file. Seeding never
// touches sensor-maintained fields of containers that already exist.
func SeedContainersFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed containers: read %q: %w", jsonPath, err)
	}

	var data []ContainerSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed containers: parse json: %w", err)
	}

	rows := make([]ContainerSeed, 0, len(data))
	for i, item := range data {
		uid := strings.TrimSpace(item.UID)
		if uid == "" {
			return fmt.Errorf("seed containers: item at index %d: uid cannot be empty", i+1)
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			return fmt.Errorf("seed containers: item at index %d: name cannot be empty", i+1)
		}
		if (item.Lat == nil) != (item.Lon == nil) {
			return fmt.Errorf("seed containers: item at index %d: lat and lon must be set together", i+1)
		}
		rows = append(rows, ContainerSeed{UID: uid, Name: name, Lat: item.Lat, Lon: item.Lon})
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed containers: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO containers (
		uid,
		name,
		lat,
		lon,
		active
	)
	VALUES (?, ?, ?, ?, 1)
	ON CONFLICT(uid) DO UPDATE SET
		name = excluded.name,
		lat = excluded.lat,
		lon = excluded.lon;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed containers: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rows {
		if _, err := stmt.Exec(c.UID, c.Name, c.Lat, c.Lon); err != nil {
			return fmt.Errorf("seed containers: upsert uid=%s: %w", c.UID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed containers: commit tx: %w", err)
	}

	return nil
}
