package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"smart-waste-service/internal/adapters/repositories"
	"smart-waste-service/internal/config"
	"smart-waste-service/internal/platform/db"
)

// dbtool prepares the Postgres reporting database that mirrors the service's
// telemetry: schema init plus optional container provisioning from JSON.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing reporting schema...")
	if err := initReportingSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	seedPath := config.Get("CONTAINERS_SEED_PATH", "")
	if seedPath == "" {
		return
	}

	log.Println("Provisioning containers...")
	if err := seedContainers(conn, seedPath); err != nil {
		log.Fatalf("provisioning failed: %v", err)
	}
	log.Println("Provisioning complete.")
}

func initReportingSchema(conn *sql.DB) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init reporting schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createContainersQuery := `
	CREATE TABLE IF NOT EXISTS containers (
		uid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		fill_level INTEGER NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ
	);
	`

	createReadingsQuery := `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id BIGSERIAL PRIMARY KEY,
		container_uid TEXT NOT NULL,
		gateway_id TEXT NOT NULL,
		n_seq INTEGER NOT NULL,
		rssi INTEGER NOT NULL,
		battery_pct INTEGER NOT NULL,
		distance_cm INTEGER NOT NULL,
		ts BIGINT NOT NULL,
		received_at TIMESTAMPTZ NOT NULL
	);
	`

	createAlertsQuery := `
	CREATE TABLE IF NOT EXISTS alerts (
		id BIGSERIAL PRIMARY KEY,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		container_uid TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		resolved_at TIMESTAMPTZ
	);
	`

	createReadingsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_sensor_readings_container_received
	ON sensor_readings(container_uid, received_at DESC);
	`

	statements := []string{
		createContainersQuery,
		createReadingsQuery,
		createAlertsQuery,
		createReadingsIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init reporting schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init reporting schema: commit tx: %w", err)
	}

	return nil
}

func seedContainers(conn *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed containers: read %q: %w", jsonPath, err)
	}

	var data []repositories.ContainerSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed containers: parse json: %w", err)
	}

	tx, err := conn.Begin()
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
	VALUES ($1, $2, $3, $4, TRUE)
	ON CONFLICT (uid) DO UPDATE SET
		name = EXCLUDED.name,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed containers: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range data {
		uid := strings.TrimSpace(c.UID)
		if uid == "" {
			return fmt.Errorf("seed containers: item at index %d: uid cannot be empty", i+1)
		}
		if _, err := stmt.Exec(uid, strings.TrimSpace(c.Name), c.Lat, c.Lon); err != nil {
			return fmt.Errorf("seed containers: upsert uid=%s: %w", uid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed containers: commit tx: %w", err)
	}

	return nil
}
