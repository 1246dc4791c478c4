package domain

import "testing"

func TestFillLevel(t *testing.T) {
	cal := DefaultCalibration()

	cases := []struct {
		name       string
		distanceCm int
		want       int
	}{
		{"empty at calibration bound", 200, 0},
		{"full at calibration bound", 20, 100},
		{"halfway", 110, 50},
		{"below empty bound clamps to zero", 250, 0},
		{"above full bound clamps to hundred", 5, 100},
		{"fractional result floors", 64, 75},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FillLevel(tc.distanceCm, cal); got != tc.want {
				t.Fatalf("FillLevel(%d) = %d, want %d", tc.distanceCm, got, tc.want)
			}
		})
	}
}

func TestFillLevelBadCalibration(t *testing.T) {
	cal := Calibration{EmptyCm: 20, FullCm: 200}

	if got := FillLevel(100, cal); got != 0 {
		t.Fatalf("inverted calibration: FillLevel = %d, want 0", got)
	}
}
