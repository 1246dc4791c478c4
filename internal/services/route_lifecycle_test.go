package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart-waste-service/internal/domain"
)

func storedRoute(status domain.RouteStatus) *domain.Route {
	depot := domain.Coordinate{Lat: 0, Lon: 0}
	return &domain.Route{
		ID:     1,
		Name:   "Collection route 2026-08-29 08:00",
		Status: status,
		Waypoints: []domain.Waypoint{
			{Type: domain.WaypointDepot, OrderIndex: 1, Name: "Depot", Location: depot},
			{Type: domain.WaypointContainer, OrderIndex: 2, Name: "Container A", ContainerUID: "c-a", Location: domain.Coordinate{Lat: 0.01, Lon: 0}},
			{Type: domain.WaypointDepot, OrderIndex: 3, Name: "Return to depot", Location: depot},
		},
	}
}

func TestRouteLifecycleStart(t *testing.T) {
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	repo := &fakeRouteRepo{routes: map[int64]*domain.Route{1: storedRoute(domain.RoutePlanned)}}
	svc := &RouteLifecycle{Routes: repo, Now: func() time.Time { return now }}

	route, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route == nil {
		t.Fatal("route is nil")
	}
	if route.Status != domain.RouteInProgress {
		t.Fatalf("status = %q, want %q", route.Status, domain.RouteInProgress)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("updates persisted = %d, want 1", len(repo.updated))
	}
}

func TestRouteLifecycleMissingRoute(t *testing.T) {
	repo := &fakeRouteRepo{routes: map[int64]*domain.Route{}}
	svc := &RouteLifecycle{Routes: repo}

	route, err := svc.Start(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route != nil {
		t.Fatalf("route = %+v, want nil for missing id", route)
	}
}

func TestRouteLifecycleInvalidTransitionNotPersisted(t *testing.T) {
	repo := &fakeRouteRepo{routes: map[int64]*domain.Route{1: storedRoute(domain.RouteCompleted)}}
	svc := &RouteLifecycle{Routes: repo}

	_, err := svc.Start(context.Background(), 1)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("updates persisted = %d, want 0", len(repo.updated))
	}
}

func TestRouteLifecycleMarkCollected(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	repo := &fakeRouteRepo{routes: map[int64]*domain.Route{1: storedRoute(domain.RouteInProgress)}}
	svc := &RouteLifecycle{Routes: repo, Now: func() time.Time { return now }}

	route, err := svc.MarkCollected(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !route.Waypoints[1].Collected {
		t.Fatal("waypoint not marked collected")
	}

	if _, err := svc.MarkCollected(context.Background(), 1, 1); !errors.Is(err, domain.ErrBadWaypoint) {
		t.Fatalf("depot collect err = %v, want bad waypoint", err)
	}
}
