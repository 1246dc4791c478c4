package domain

// Calibration maps raw ultrasonic distance readings to fill percentages.
// EmptyCm is the sensor-to-bottom distance of an empty container, FullCm the
// distance left when the container is full. Values are site-specific.
type Calibration struct {
	EmptyCm int
	FullCm  int
}

func DefaultCalibration() Calibration {
	return Calibration{EmptyCm: 200, FullCm: 20}
}

// FillLevel derives a 0-100 fill percentage from a raw distance reading (cm)
// by linear interpolation between the calibration bounds. Out-of-range inputs
// are clamped; the result is floored to an integer percentage.
func FillLevel(distanceCm int, cal Calibration) int {
	if cal.EmptyCm <= cal.FullCm {
		return 0
	}
	if distanceCm >= cal.EmptyCm {
		return 0
	}
	if distanceCm <= cal.FullCm {
		return 100
	}

	pct := int(float64(cal.EmptyCm-distanceCm) / float64(cal.EmptyCm-cal.FullCm) * 100)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
