package motion

import (
	"errors"
	"math"
	"testing"

	"github.com/asgard/skywatch/pkg/skyerr"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestConstantPulseTimesEvenlySpaced(t *testing.T) {
	times := ConstantPulseTimes(100, 100)
	if len(times) != 100 {
		t.Fatalf("got %d pulses, want 100", len(times))
	}
	for i, tm := range times {
		want := float64(i+1) / 100
		if !almostEqual(tm, want, 1e-9) {
			t.Fatalf("pulse %d: got %v, want %v", i, tm, want)
		}
	}
	if !almostEqual(times[len(times)-1], 1.0, 1e-9) {
		t.Fatalf("final pulse time = %v, want 1.0s", times[len(times)-1])
	}
}

func TestConstantPulseTimesNegativeSteps(t *testing.T) {
	times := ConstantPulseTimes(-5, 10)
	if len(times) != 5 {
		t.Fatalf("got %d pulses, want 5", len(times))
	}
	for _, tm := range times {
		if tm >= 0 {
			t.Fatalf("reverse-direction pulse time %v should be negative", tm)
		}
	}
}

// TestSymmetricTrapezoidIntercept mirrors scenario S2: a goto(target=500,
// final_velocity=0) from (0, 0) with max_accel=200. Expect cruise velocity
// sqrt(200*500) ~= 316.23, a 250/0/250 step split, and total elapsed time
// ~= 3.162s.
func TestSymmetricTrapezoidIntercept(t *testing.T) {
	const aIn = 200.0
	const aOut = -200.0
	const steps = 500

	vc := math.Sqrt(aIn * 500)
	if !almostEqual(vc, 316.23, 0.01) {
		t.Fatalf("cruise velocity = %v, want ~316.23", vc)
	}

	sIn := TravelLinAccel(0, vc, aIn)
	sOut := TravelLinAccel(vc, 0, aOut)
	if !almostEqual(sIn, 250, 1e-6) || !almostEqual(sOut, 250, 1e-6) {
		t.Fatalf("accel split = (%v, %v), want (250, 250)", sIn, sOut)
	}

	times, err := TrapezoidPulseTimes(0, 0, vc, aIn, aOut, steps)
	if err != nil {
		t.Fatalf("TrapezoidPulseTimes: %v", err)
	}
	if len(times) != steps {
		t.Fatalf("got %d pulse times, want %d", len(times), steps)
	}

	total := times[len(times)-1]
	if !almostEqual(total, 3.162, 0.01) {
		t.Fatalf("total elapsed time = %v, want ~3.162s", total)
	}
}

// TestInterceptMovingTarget mirrors scenario S3: intercept(target=1000,
// target_velocity=100, final_velocity=100) from (0, 0). The solver must
// yield p_f > 1000 since the target itself advances during the maneuver.
func TestInterceptMovingTarget(t *testing.T) {
	const maxSpeed = 2000.0
	const aIn = 200.0
	const aOut = -200.0

	params, err := Intercept(maxSpeed, aIn, aOut, 0, 0, 100, 1000, 100)
	if err != nil {
		t.Fatalf("Intercept: %v", err)
	}
	if params.Time <= 0 {
		t.Fatalf("intercept time = %v, want positive", params.Time)
	}

	pf := 1000 + 100*params.Time
	if pf <= 1000 {
		t.Fatalf("p_f = %v, want > 1000 (target drifted during maneuver)", pf)
	}
}

func TestInterceptRejectsVelocityAtMaxSpeed(t *testing.T) {
	_, err := Intercept(100, 50, -50, 0, 0, 0, 0, 100)
	var ig *skyerr.InvalidGoalError
	if !errors.As(err, &ig) {
		t.Fatalf("got err %v, want *skyerr.InvalidGoalError", err)
	}
}

func TestTrapezoidPulseTimesRejectsOversizedAccelPhases(t *testing.T) {
	_, err := TrapezoidPulseTimes(0, 0, 1000, 200, -200, 10)
	var ig *skyerr.InvalidGoalError
	if !errors.As(err, &ig) {
		t.Fatalf("got err %v, want *skyerr.InvalidGoalError", err)
	}
}

func TestLinearAccelPulseTimesMonotonic(t *testing.T) {
	times := LinearAccelPulseTimes(250, 0, 200)
	if len(times) != 250 {
		t.Fatalf("got %d pulses, want 250", len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("pulse times not strictly increasing at index %d: %v <= %v", i, times[i], times[i-1])
		}
	}
	if !almostEqual(times[len(times)-1], math.Sqrt(100000)/200, 1e-6) {
		t.Fatalf("final accel pulse time = %v, want ~%v", times[len(times)-1], math.Sqrt(100000)/200)
	}
}
