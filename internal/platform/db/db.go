package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open connects to the Postgres reporting database and verifies the
// connection before returning it. The pool is sized for the dbtool's batch
// workload, not for request serving.
func Open(databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return conn, nil
}
