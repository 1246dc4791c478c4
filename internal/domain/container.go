package domain

import "time"

// Represents a waste container with a mounted fill-level sensor.
// Containers are provisioned out-of-band, mutated by the ingestion pipeline on
// every accepted reading, and deactivated rather than deleted.
type Container struct {
	UID         string
	Name        string
	Location    *Coordinate
	Active      bool
	FillLevel   int
	LastUpdated time.Time
}

// FillStatus returns a coarse label for the current fill level.
func (c Container) FillStatus() string {
	switch {
	case c.FillLevel >= 90:
		return "full"
	case c.FillLevel >= 70:
		return "high"
	case c.FillLevel >= 40:
		return "medium"
	case c.FillLevel >= 20:
		return "low"
	default:
		return "empty"
	}
}

// HasLocation reports whether the container can be routed to.
func (c Container) HasLocation() bool { return c.Location != nil }
