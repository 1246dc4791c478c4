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

// SQL-backed implementation of the AlertRepository port.
type SqlAlertRepository struct{ DB *sql.DB }

func NewSqlAlertRepository(db *sql.DB) *SqlAlertRepository {
	return &SqlAlertRepository{DB: db}
}

func (s *SqlAlertRepository) Insert(ctx context.Context, alert *domain.Alert) (err error) {
	if s.DB == nil {
		return errors.New("alert repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.InsertAlert")(&err)

	query := `
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
	res, err := s.DB.ExecContext(ctx, query,
		alert.Type, alert.Severity, alert.ContainerUID, alert.Title, alert.Message, fmtTime(alert.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert alert: exec: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert alert: last insert id: %w", err)
	}
	alert.ID = id

	return nil
}

// Return the newest alerts first. A non-positive limit means no limit.
func (s *SqlAlertRepository) ListRecent(ctx context.Context, limit int) (out []domain.Alert, err error) {
	if s.DB == nil {
		return nil, errors.New("alert repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.ListRecentAlerts")(&err)

	if limit <= 0 {
		limit = -1
	}

	query := `
	SELECT
		id,
		type,
		severity,
		container_uid,
		title,
		message,
		is_read,
		is_resolved,
		created_at,
		resolved_at
	FROM alerts
	ORDER BY created_at DESC, id DESC
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: query: %w", err)
	}
	defer rows.Close()

	out = make([]domain.Alert, 0, 32)
	for rows.Next() {
		var (
			a          domain.Alert
			createdAt  string
			resolvedAt *string
		)
		if err := rows.Scan(&a.ID, &a.Type, &a.Severity, &a.ContainerUID, &a.Title,
			&a.Message, &a.Read, &a.Resolved, &createdAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("list alerts: scan row: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		a.ResolvedAt = parseTimePtr(resolvedAt)
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list alerts: row iteration: %w", err)
	}

	return out, nil
}

func (s *SqlAlertRepository) MarkRead(ctx context.Context, id int64) (err error) {
	if s.DB == nil {
		return errors.New("alert repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.MarkAlertRead")(&err)

	res, err := s.DB.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("mark alert read: exec: %w", err)
	}
	return requireRow(res, fmt.Sprintf("mark alert read: alert %d", id))
}

func (s *SqlAlertRepository) Resolve(ctx context.Context, id int64, at time.Time) (err error) {
	if s.DB == nil {
		return errors.New("alert repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.ResolveAlert")(&err)

	// Idempotent: resolving twice keeps the first resolution time.
	query := `
	UPDATE alerts
	SET is_resolved = 1, resolved_at = COALESCE(resolved_at, ?)
	WHERE id = ?;
	`
	res, err := s.DB.ExecContext(ctx, query, fmtTime(at), id)
	if err != nil {
		return fmt.Errorf("resolve alert: exec: %w", err)
	}
	return requireRow(res, fmt.Sprintf("resolve alert: alert %d", id))
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ports.ErrNotFound)
	}
	return nil
}
