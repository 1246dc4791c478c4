package domain

import (
	"fmt"
	"time"
)

type AlertType string

const (
	AlertContainerFull AlertType = "container_full"
	AlertLowBattery    AlertType = "low_battery"
	AlertWeakSignal    AlertType = "weak_signal"
	AlertSensorOffline AlertType = "sensor_offline"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Represents a threshold-breach notification tied to a container.
// Alerts are created by the alert engine and resolved explicitly by an
// external action; they are never reopened.
type Alert struct {
	ID           int64
	Type         AlertType
	Severity     AlertSeverity
	ContainerUID string
	Title        string
	Message      string
	Read         bool
	Resolved     bool
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

// MarkRead flags the alert as seen. Reading is one-way.
func (a *Alert) MarkRead() { a.Read = true }

// Resolve closes the alert. ResolvedAt is set exactly when Resolved is.
func (a *Alert) Resolve(at time.Time) {
	if a.Resolved {
		return
	}
	a.Resolved = true
	a.ResolvedAt = &at
}

// Thresholds are the tunable trigger levels for the alert rules.
type Thresholds struct {
	FullPct        int
	LowBatteryPct  int
	WeakSignalRSSI int
}

func DefaultThresholds() Thresholds {
	return Thresholds{FullPct: 90, LowBatteryPct: 20, WeakSignalRSSI: -80}
}

// AlertRule pairs a trigger condition with the alert it produces.
type AlertRule struct {
	Type      AlertType
	Severity  AlertSeverity
	Triggered func(c Container, r SensorReading) bool
	Describe  func(c Container, r SensorReading) (title, message string)
}

// ThresholdRules builds the per-reading rule set. Every qualifying reading
// appends a new alert; there is no suppression of repeats here (repeat
// throttling is a policy decision for the surrounding system). Rules are
// independent, so a single reading may fire several of them.
func ThresholdRules(t Thresholds) []AlertRule {
	return []AlertRule{
		{
			Type:     AlertContainerFull,
			Severity: SeverityHigh,
			Triggered: func(c Container, _ SensorReading) bool {
				return c.FillLevel >= t.FullPct
			},
			Describe: func(c Container, _ SensorReading) (string, string) {
				return "Container full", fmt.Sprintf("Container %s is %d%% full", c.Name, c.FillLevel)
			},
		},
		{
			Type:     AlertLowBattery,
			Severity: SeverityMedium,
			Triggered: func(_ Container, r SensorReading) bool {
				return r.BatteryPct <= t.LowBatteryPct
			},
			Describe: func(c Container, r SensorReading) (string, string) {
				return "Low battery", fmt.Sprintf("Sensor %s battery at %d%%", c.Name, r.BatteryPct)
			},
		},
		{
			Type:     AlertWeakSignal,
			Severity: SeverityLow,
			Triggered: func(_ Container, r SensorReading) bool {
				return r.RSSI <= t.WeakSignalRSSI
			},
			Describe: func(c Container, r SensorReading) (string, string) {
				return "Weak signal", fmt.Sprintf("Sensor %s has a weak link (RSSI %d)", c.Name, r.RSSI)
			},
		},
	}
}

// NewOfflineAlert builds the staleness alert raised by the offline sweep for
// an active container that has stopped reporting.
func NewOfflineAlert(c Container, lastSeen time.Time, now time.Time) Alert {
	return Alert{
		Type:         AlertSensorOffline,
		Severity:     SeverityCritical,
		ContainerUID: c.UID,
		Title:        "Sensor offline",
		Message:      fmt.Sprintf("Sensor %s has not reported since %s", c.Name, lastSeen.UTC().Format(time.RFC3339)),
		CreatedAt:    now,
	}
}
