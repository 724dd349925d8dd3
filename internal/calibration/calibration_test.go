package calibration

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestAnglePerStep(t *testing.T) {
	got := AnglePerStep(200, 10)
	want := 2 * math.Pi / 2000
	if !almostEqual(got, want, 1e-12) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestCalibrateMatchesRequestedAngle mirrors invariant 6: after
// Calibrate(b, d), orientation() returns (b, d) rounded to the nearest
// step.
func TestCalibrateMatchesRequestedAngle(t *testing.T) {
	tel := NewTelescope(200, 10, 200, 10)
	tel.Bearing.Calibrate(1.0, 500)

	got := tel.Bearing.Angle(500)
	if !almostEqual(got, 1.0, tel.Bearing.AnglePerStep()) {
		t.Fatalf("angle after calibrate = %v, want ~1.0 (within one step)", got)
	}
}

func TestTelescopeCalibrateBothAxes(t *testing.T) {
	tel := NewTelescope(200, 10, 400, 5)
	tel.Calibrate(0.5, -0.25, 100, -50)

	o := tel.Orientation(100, -50)
	if !almostEqual(o.BearingRad, 0.5, tel.Bearing.AnglePerStep()) {
		t.Fatalf("bearing = %v, want ~0.5", o.BearingRad)
	}
	if !almostEqual(o.DecRad, -0.25, tel.Dec.AnglePerStep()) {
		t.Fatalf("dec = %v, want ~-0.25", o.DecRad)
	}
}

// TestCalibrateRelStepsZeroIsNoop mirrors round-trip property 8:
// CalibrateRelSteps(0, 0) is a no-op.
func TestCalibrateRelStepsZeroIsNoop(t *testing.T) {
	tel := NewTelescope(200, 10, 200, 10)
	tel.Calibrate(1.2, -0.4, 10, 20)

	before := tel.Orientation(10, 20)
	tel.CalibrateRelSteps(0, 0)
	after := tel.Orientation(10, 20)

	if before != after {
		t.Fatalf("CalibrateRelSteps(0,0) changed orientation: %+v -> %+v", before, after)
	}
}

func TestCalibrateRelStepsNudgesOffset(t *testing.T) {
	c := New(200, 10)
	c.Calibrate(0, 0)
	before := c.Offset()

	c.CalibrateRelSteps(5)
	if got := c.Offset(); got != before+5 {
		t.Fatalf("offset = %d, want %d", got, before+5)
	}
}
