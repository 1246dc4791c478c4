package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/platform/obs"
)

// SQL-backed implementation of the RouteRepository port.
type SqlRouteRepository struct{ DB *sql.DB }

func NewSqlRouteRepository(db *sql.DB) *SqlRouteRepository {
	return &SqlRouteRepository{DB: db}
}

// Create persists the route together with its waypoints in one transaction
// and assigns the generated IDs.
func (s *SqlRouteRepository) Create(ctx context.Context, route *domain.Route) (err error) {
	if s.DB == nil {
		return errors.New("route repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.CreateRoute")(&err)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertRouteQuery := `
	INSERT INTO routes (
		name,
		status,
		total_distance_km,
		estimated_minutes,
		actual_minutes,
		progress,
		start_time,
		end_time,
		created_at,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	res, err := tx.ExecContext(ctx, insertRouteQuery,
		route.Name, route.Status, route.TotalDistanceKm, route.EstimatedMinutes,
		route.ActualMinutes, route.Progress, fmtTimePtr(route.StartTime),
		fmtTimePtr(route.EndTime), fmtTime(route.CreatedAt), fmtTime(route.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create route: insert route: %w", err)
	}

	routeID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create route: last insert id: %w", err)
	}

	insertWaypointQuery := `
	INSERT INTO route_waypoints (
		route_id,
		type,
		order_index,
		name,
		lat,
		lon,
		container_uid,
		fill_level,
		battery_pct,
		priority,
		collected,
		collected_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.PrepareContext(ctx, insertWaypointQuery)
	if err != nil {
		return fmt.Errorf("create route: prepare waypoint insert: %w", err)
	}
	defer stmt.Close()

	for i := range route.Waypoints {
		w := &route.Waypoints[i]
		res, err := stmt.ExecContext(ctx,
			routeID, w.Type, w.OrderIndex, w.Name, w.Location.Lat, w.Location.Lon,
			w.ContainerUID, w.FillLevel, w.BatteryPct, w.Priority, w.Collected,
			fmtTimePtr(w.CollectedAt))
		if err != nil {
			return fmt.Errorf("create route: insert waypoint order=%d: %w", w.OrderIndex, err)
		}
		wpID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create route: waypoint last insert id: %w", err)
		}
		w.ID = wpID
		w.RouteID = routeID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create route: commit tx: %w", err)
	}

	route.ID = routeID
	return nil
}

// List returns all routes with their waypoints, newest route first.
func (s *SqlRouteRepository) List(ctx context.Context) (out []*domain.Route, err error) {
	if s.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.ListRoutes")(&err)

	routesQuery := `
	SELECT
		id,
		name,
		status,
		total_distance_km,
		estimated_minutes,
		actual_minutes,
		progress,
		start_time,
		end_time,
		created_at,
		updated_at
	FROM routes
	ORDER BY id DESC;
	`
	rows, err := s.DB.QueryContext(ctx, routesQuery)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes: %w", err)
	}
	defer rows.Close()

	out = make([]*domain.Route, 0, 16)
	byID := make(map[int64]*domain.Route, 16)
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: %w", err)
		}
		out = append(out, r)
		byID[r.ID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	wpRows, err := s.DB.QueryContext(ctx, waypointSelectQuery+` ORDER BY route_id, order_index;`)
	if err != nil {
		return nil, fmt.Errorf("list routes: query waypoints: %w", err)
	}
	defer wpRows.Close()

	for wpRows.Next() {
		w, err := scanWaypoint(wpRows)
		if err != nil {
			return nil, fmt.Errorf("list routes: %w", err)
		}
		if r, ok := byID[w.RouteID]; ok {
			r.Waypoints = append(r.Waypoints, w)
		}
	}
	if err := wpRows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: waypoint iteration: %w", err)
	}

	return out, nil
}

// Get returns the route with its waypoints, or (nil, nil) when it does not
// exist.
func (s *SqlRouteRepository) Get(ctx context.Context, id int64) (route *domain.Route, err error) {
	if s.DB == nil {
		return nil, errors.New("route repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.GetRoute")(&err)

	routeQuery := `
	SELECT
		id,
		name,
		status,
		total_distance_km,
		estimated_minutes,
		actual_minutes,
		progress,
		start_time,
		end_time,
		created_at,
		updated_at
	FROM routes
	WHERE id = ?;
	`
	rows, err := s.DB.QueryContext(ctx, routeQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get route: query route: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get route: row iteration: %w", err)
		}
		return nil, nil
	}
	route, err = scanRoute(rows)
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	rows.Close()

	wpRows, err := s.DB.QueryContext(ctx, waypointSelectQuery+` WHERE route_id = ? ORDER BY order_index;`, id)
	if err != nil {
		return nil, fmt.Errorf("get route: query waypoints: %w", err)
	}
	defer wpRows.Close()

	for wpRows.Next() {
		w, err := scanWaypoint(wpRows)
		if err != nil {
			return nil, fmt.Errorf("get route: %w", err)
		}
		route.Waypoints = append(route.Waypoints, w)
	}
	if err := wpRows.Err(); err != nil {
		return nil, fmt.Errorf("get route: waypoint iteration: %w", err)
	}

	return route, nil
}

// UpdateStatus persists the lifecycle fields after a transition.
func (s *SqlRouteRepository) UpdateStatus(ctx context.Context, route *domain.Route) (err error) {
	if s.DB == nil {
		return errors.New("route repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.UpdateRouteStatus")(&err)

	query := `
	UPDATE routes
	SET status = ?,
		progress = ?,
		actual_minutes = ?,
		start_time = ?,
		end_time = ?,
		updated_at = ?
	WHERE id = ?;
	`
	res, err := s.DB.ExecContext(ctx, query,
		route.Status, route.Progress, route.ActualMinutes,
		fmtTimePtr(route.StartTime), fmtTimePtr(route.EndTime),
		fmtTime(route.UpdatedAt), route.ID)
	if err != nil {
		return fmt.Errorf("update route status: exec: %w", err)
	}
	return requireRow(res, fmt.Sprintf("update route status: route %d", route.ID))
}

func (s *SqlRouteRepository) MarkWaypointCollected(ctx context.Context, routeID int64, orderIndex int, at time.Time) (err error) {
	if s.DB == nil {
		return errors.New("route repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.MarkWaypointCollected")(&err)

	query := `
	UPDATE route_waypoints
	SET collected = 1, collected_at = ?
	WHERE route_id = ? AND order_index = ?;
	`
	res, err := s.DB.ExecContext(ctx, query, fmtTime(at), routeID, orderIndex)
	if err != nil {
		return fmt.Errorf("mark waypoint collected: exec: %w", err)
	}
	if err := requireRow(res, fmt.Sprintf("mark waypoint collected: route %d order %d", routeID, orderIndex)); err != nil {
		return err
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE routes SET updated_at = ? WHERE id = ?;`, fmtTime(at), routeID); err != nil {
		return fmt.Errorf("mark waypoint collected: touch route %d: %w", routeID, err)
	}
	return nil
}

func (s *SqlRouteRepository) Delete(ctx context.Context, id int64) (err error) {
	if s.DB == nil {
		return errors.New("route repository: DB is nil")
	}
	defer obs.Time(ctx, "sql.DeleteRoute")(&err)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete route: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_waypoints WHERE route_id = ?;`, id); err != nil {
		return fmt.Errorf("delete route: delete waypoints: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM routes WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete route: delete route: %w", err)
	}
	if err := requireRow(res, fmt.Sprintf("delete route: route %d", id)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete route: commit tx: %w", err)
	}
	return nil
}

const waypointSelectQuery = `
	SELECT
		id,
		route_id,
		type,
		order_index,
		name,
		lat,
		lon,
		container_uid,
		fill_level,
		battery_pct,
		priority,
		collected,
		collected_at
	FROM route_waypoints`

func scanRoute(rows *sql.Rows) (*domain.Route, error) {
	var (
		r                    domain.Route
		startTime, endTime   *string
		createdAt, updatedAt string
	)
	if err := rows.Scan(&r.ID, &r.Name, &r.Status, &r.TotalDistanceKm, &r.EstimatedMinutes,
		&r.ActualMinutes, &r.Progress, &startTime, &endTime, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scan route: %w", err)
	}
	r.StartTime = parseTimePtr(startTime)
	r.EndTime = parseTimePtr(endTime)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}

func scanWaypoint(rows *sql.Rows) (domain.Waypoint, error) {
	var (
		w           domain.Waypoint
		collectedAt *string
	)
	if err := rows.Scan(&w.ID, &w.RouteID, &w.Type, &w.OrderIndex, &w.Name,
		&w.Location.Lat, &w.Location.Lon, &w.ContainerUID, &w.FillLevel,
		&w.BatteryPct, &w.Priority, &w.Collected, &collectedAt); err != nil {
		return domain.Waypoint{}, fmt.Errorf("scan waypoint: %w", err)
	}
	w.CollectedAt = parseTimePtr(collectedAt)
	return w, nil
}
