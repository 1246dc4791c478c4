package ports

import (
	"context"
	"time"

	"smart-waste-service/internal/domain"
)

// Port: persistence for planned routes and their waypoints.
type RouteRepository interface {
	// Create persists the route and assigns IDs to it and its waypoints.
	Create(ctx context.Context, route *domain.Route) error
	List(ctx context.Context) ([]*domain.Route, error)
	Get(ctx context.Context, id int64) (*domain.Route, error)
	// UpdateStatus writes the lifecycle fields (status, progress, timing).
	UpdateStatus(ctx context.Context, route *domain.Route) error
	MarkWaypointCollected(ctx context.Context, routeID int64, orderIndex int, at time.Time) error
	Delete(ctx context.Context, id int64) error
}
