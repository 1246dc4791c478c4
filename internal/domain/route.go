package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition marks a lifecycle operation applied in a status that
// does not allow it.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrBadWaypoint marks a collection attempt on a waypoint that does not
// exist or is the depot.
var ErrBadWaypoint = errors.New("waypoint cannot be collected")

type RouteStatus string

const (
	RoutePlanned    RouteStatus = "Planned"
	RouteInProgress RouteStatus = "InProgress"
	RouteCompleted  RouteStatus = "Completed"
	RoutePaused     RouteStatus = "Paused"
	RouteCancelled  RouteStatus = "Cancelled"
)

type WaypointType string

const (
	WaypointDepot     WaypointType = "depot"
	WaypointContainer WaypointType = "container"
)

// Represents one stop in a collection route: either the depot or a container.
// Container stops carry a planning-time snapshot of fill level and battery so
// the route remains meaningful as live state moves on.
type Waypoint struct {
	ID           int64
	RouteID      int64
	Type         WaypointType
	OrderIndex   int // 1-based; first and last are always the depot
	Name         string
	Location     Coordinate
	ContainerUID string
	FillLevel    int
	BatteryPct   int
	Priority     string
	Collected    bool
	CollectedAt  *time.Time
}

// Represents a planned collection tour with its status lifecycle.
// Waypoints are ordered depot, stops in visit order, depot.
type Route struct {
	ID               int64
	Name             string
	Status           RouteStatus
	Waypoints        []Waypoint
	TotalDistanceKm  float64
	EstimatedMinutes int
	ActualMinutes    *int
	Progress         int
	StartTime        *time.Time
	EndTime          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ContainerCount returns the number of container stops on the route.
func (r *Route) ContainerCount() int {
	n := 0
	for _, w := range r.Waypoints {
		if w.Type == WaypointContainer {
			n++
		}
	}
	return n
}

// Start moves a planned route into progress.
func (r *Route) Start(now time.Time) error {
	if r.Status != RoutePlanned {
		return fmt.Errorf("start route: cannot start route in status %q: %w", r.Status, ErrInvalidTransition)
	}
	r.Status = RouteInProgress
	r.StartTime = &now
	r.UpdatedAt = now
	return nil
}

// Pause suspends an in-progress route.
func (r *Route) Pause(now time.Time) error {
	if r.Status != RouteInProgress {
		return fmt.Errorf("pause route: cannot pause route in status %q: %w", r.Status, ErrInvalidTransition)
	}
	r.Status = RoutePaused
	r.UpdatedAt = now
	return nil
}

// Resume returns a paused route to progress.
func (r *Route) Resume(now time.Time) error {
	if r.Status != RoutePaused {
		return fmt.Errorf("resume route: cannot resume route in status %q: %w", r.Status, ErrInvalidTransition)
	}
	r.Status = RouteInProgress
	r.UpdatedAt = now
	return nil
}

// Complete finishes an in-progress route. Progress is forced to 100 and the
// actual duration is computed from the start/end timestamps. Waypoints that
// were never marked collected keep their flags as-is.
func (r *Route) Complete(now time.Time) error {
	if r.Status != RouteInProgress {
		return fmt.Errorf("complete route: cannot complete route in status %q: %w", r.Status, ErrInvalidTransition)
	}
	r.Status = RouteCompleted
	r.EndTime = &now
	r.Progress = 100
	if r.StartTime != nil {
		minutes := int(now.Sub(*r.StartTime).Minutes())
		r.ActualMinutes = &minutes
	}
	r.UpdatedAt = now
	return nil
}

// Cancel aborts the route from any non-terminal state.
func (r *Route) Cancel(now time.Time) error {
	if r.Status == RouteCompleted || r.Status == RouteCancelled {
		return fmt.Errorf("cancel route: cannot cancel route in status %q: %w", r.Status, ErrInvalidTransition)
	}
	r.Status = RouteCancelled
	r.UpdatedAt = now
	return nil
}

// MarkCollected flags the container stop at the given order index as
// collected. It is valid only while the route is in progress and does not by
// itself change the route status.
func (r *Route) MarkCollected(orderIndex int, now time.Time) error {
	if r.Status != RouteInProgress {
		return fmt.Errorf("mark collected: route must be in progress, is %q: %w", r.Status, ErrInvalidTransition)
	}
	for i := range r.Waypoints {
		w := &r.Waypoints[i]
		if w.OrderIndex != orderIndex {
			continue
		}
		if w.Type != WaypointContainer {
			return fmt.Errorf("mark collected: waypoint %d is the depot: %w", orderIndex, ErrBadWaypoint)
		}
		w.Collected = true
		w.CollectedAt = &now
		r.UpdatedAt = now
		return nil
	}
	return fmt.Errorf("mark collected: no waypoint with order %d: %w", orderIndex, ErrBadWaypoint)
}

// Validate checks the structural invariants of a constructed route: exactly
// two depot waypoints at the ends, contiguous 1-based order indices, and no
// container visited twice.
func (r *Route) Validate() error {
	n := len(r.Waypoints)
	if n < 2 {
		return fmt.Errorf("validate route: need at least depot start and return, have %d waypoints", n)
	}
	if r.Waypoints[0].Type != WaypointDepot || r.Waypoints[n-1].Type != WaypointDepot {
		return fmt.Errorf("validate route: first and last waypoints must be the depot")
	}
	seen := make(map[string]struct{}, n)
	for i, w := range r.Waypoints {
		if w.OrderIndex != i+1 {
			return fmt.Errorf("validate route: waypoint %d has order %d", i, w.OrderIndex)
		}
		if w.Type != WaypointContainer {
			continue
		}
		if _, dup := seen[w.ContainerUID]; dup {
			return fmt.Errorf("validate route: container %s appears twice", w.ContainerUID)
		}
		seen[w.ContainerUID] = struct{}{}
	}
	return nil
}
