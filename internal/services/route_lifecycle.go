package services

import (
	"context"
	"fmt"
	"time"

	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
)

// RouteLifecycle drives the status transitions of persisted routes.
// Transition rules live on the domain type; this service loads, applies, and
// writes back.
type RouteLifecycle struct {
	Routes ports.RouteRepository
	Now    func() time.Time
}

func (s *RouteLifecycle) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type transition func(r *domain.Route, now time.Time) error

func (s *RouteLifecycle) apply(ctx context.Context, id int64, op string, t transition) (*domain.Route, error) {
	route, err := s.Routes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: load route %d: %w", op, id, err)
	}
	if route == nil {
		return nil, nil
	}
	if err := t(route, s.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Routes.UpdateStatus(ctx, route); err != nil {
		return nil, fmt.Errorf("%s: persist route %d: %w", op, id, err)
	}
	return route, nil
}

func (s *RouteLifecycle) Start(ctx context.Context, id int64) (*domain.Route, error) {
	return s.apply(ctx, id, "start route", (*domain.Route).Start)
}

func (s *RouteLifecycle) Pause(ctx context.Context, id int64) (*domain.Route, error) {
	return s.apply(ctx, id, "pause route", (*domain.Route).Pause)
}

func (s *RouteLifecycle) Resume(ctx context.Context, id int64) (*domain.Route, error) {
	return s.apply(ctx, id, "resume route", (*domain.Route).Resume)
}

func (s *RouteLifecycle) Complete(ctx context.Context, id int64) (*domain.Route, error) {
	return s.apply(ctx, id, "complete route", (*domain.Route).Complete)
}

func (s *RouteLifecycle) Cancel(ctx context.Context, id int64) (*domain.Route, error) {
	return s.apply(ctx, id, "cancel route", (*domain.Route).Cancel)
}

// MarkCollected flags one container stop as collected. The route status is
// untouched; collection progress and route completion are separate concerns.
func (s *RouteLifecycle) MarkCollected(ctx context.Context, routeID int64, orderIndex int) (*domain.Route, error) {
	route, err := s.Routes.Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("mark collected: load route %d: %w", routeID, err)
	}
	if route == nil {
		return nil, nil
	}
	now := s.now()
	if err := route.MarkCollected(orderIndex, now); err != nil {
		return nil, err
	}
	if err := s.Routes.MarkWaypointCollected(ctx, routeID, orderIndex, now); err != nil {
		return nil, fmt.Errorf("mark collected: persist waypoint %d/%d: %w", routeID, orderIndex, err)
	}
	return route, nil
}
