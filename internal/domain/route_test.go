package domain

import (
	"errors"
	"testing"
	"time"
)

func testRoute() *Route {
	depot := Coordinate{Lat: -23.5505, Lon: -46.6333}
	return &Route{
		ID:     1,
		Name:   "Collection route 2026-08-29 08:00",
		Status: RoutePlanned,
		Waypoints: []Waypoint{
			{Type: WaypointDepot, OrderIndex: 1, Name: "Depot", Location: depot},
			{Type: WaypointContainer, OrderIndex: 2, Name: "Container A", ContainerUID: "c-a", FillLevel: 92, Priority: "high", Location: Coordinate{Lat: -23.54, Lon: -46.63}},
			{Type: WaypointContainer, OrderIndex: 3, Name: "Container B", ContainerUID: "c-b", FillLevel: 78, Priority: "medium", Location: Coordinate{Lat: -23.53, Lon: -46.62}},
			{Type: WaypointDepot, OrderIndex: 4, Name: "Return to depot", Location: depot},
		},
	}
}

func TestRouteLifecycle(t *testing.T) {
	r := testRoute()
	start := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	if err := r.Start(start); err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.Status != RouteInProgress {
		t.Fatalf("status after start = %q, want %q", r.Status, RouteInProgress)
	}
	if r.StartTime == nil || !r.StartTime.Equal(start) {
		t.Fatalf("start time not recorded: %v", r.StartTime)
	}

	if err := r.Pause(start.Add(10 * time.Minute)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := r.Resume(start.Add(15 * time.Minute)); err != nil {
		t.Fatalf("resume: %v", err)
	}

	end := start.Add(95 * time.Minute)
	if err := r.Complete(end); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if r.Status != RouteCompleted {
		t.Fatalf("status after complete = %q, want %q", r.Status, RouteCompleted)
	}
	if r.Progress != 100 {
		t.Fatalf("progress after complete = %d, want 100", r.Progress)
	}
	if r.ActualMinutes == nil || *r.ActualMinutes != 95 {
		t.Fatalf("actual minutes = %v, want 95", r.ActualMinutes)
	}
	if r.EndTime == nil || !r.EndTime.Equal(end) {
		t.Fatalf("end time not recorded: %v", r.EndTime)
	}
}

func TestRouteInvalidTransitions(t *testing.T) {
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	r := testRoute()
	if err := r.Pause(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pause of planned route: err = %v, want invalid transition", err)
	}
	if err := r.Complete(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("complete of planned route: err = %v, want invalid transition", err)
	}
	if err := r.Resume(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("resume of planned route: err = %v, want invalid transition", err)
	}

	if err := r.Start(now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Start(now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double start: err = %v, want invalid transition", err)
	}

	if err := r.Complete(now.Add(time.Hour)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := r.Cancel(now.Add(time.Hour)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel of completed route: err = %v, want invalid transition", err)
	}
}

func TestRouteCancelFromAnyActiveState(t *testing.T) {
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)

	planned := testRoute()
	if err := planned.Cancel(now); err != nil {
		t.Fatalf("cancel planned: %v", err)
	}

	paused := testRoute()
	if err := paused.Start(now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := paused.Pause(now); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := paused.Cancel(now); err != nil {
		t.Fatalf("cancel paused: %v", err)
	}
	if paused.Status != RouteCancelled {
		t.Fatalf("status = %q, want %q", paused.Status, RouteCancelled)
	}
}

func TestRouteMarkCollected(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	r := testRoute()
	if err := r.MarkCollected(2, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("mark collected on planned route: err = %v, want invalid transition", err)
	}

	if err := r.Start(now); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := r.MarkCollected(2, now); err != nil {
		t.Fatalf("mark collected: %v", err)
	}
	wp := r.Waypoints[1]
	if !wp.Collected || wp.CollectedAt == nil || !wp.CollectedAt.Equal(now) {
		t.Fatalf("waypoint 2 not collected: %+v", wp)
	}
	if r.Status != RouteInProgress {
		t.Fatalf("status changed by mark collected: %q", r.Status)
	}

	if err := r.MarkCollected(1, now); !errors.Is(err, ErrBadWaypoint) {
		t.Fatalf("mark collected on depot: err = %v, want bad waypoint", err)
	}
	if err := r.MarkCollected(9, now); !errors.Is(err, ErrBadWaypoint) {
		t.Fatalf("mark collected on missing order: err = %v, want bad waypoint", err)
	}
}

func TestRouteValidate(t *testing.T) {
	r := testRoute()
	if err := r.Validate(); err != nil {
		t.Fatalf("valid route rejected: %v", err)
	}

	dup := testRoute()
	dup.Waypoints[2].ContainerUID = "c-a"
	if err := dup.Validate(); err == nil {
		t.Fatal("duplicate container accepted")
	}

	noDepot := testRoute()
	noDepot.Waypoints = noDepot.Waypoints[1:]
	if err := noDepot.Validate(); err == nil {
		t.Fatal("route without leading depot accepted")
	}

	gap := testRoute()
	gap.Waypoints[2].OrderIndex = 5
	if err := gap.Validate(); err == nil {
		t.Fatal("non-contiguous order accepted")
	}
}
