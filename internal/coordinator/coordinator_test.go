package coordinator

import (
	"math"
	"testing"
	"time"

	"github.com/asgard/skywatch/internal/axis"
	"github.com/asgard/skywatch/internal/calibration"
	"github.com/asgard/skywatch/internal/pulse"
	"github.com/asgard/skywatch/internal/target"
)

// fakeTarget reports a fixed, unwrapped hour-angle/declination pair
// regardless of query time, so the finite-difference velocity sample
// comes out to exactly zero and the dual-intercept math in a test is
// fully deterministic.
type fakeTarget struct {
	coord target.Coordinate
}

func (f fakeTarget) Coordinate(time.Time, target.Location) (target.Coordinate, error) {
	return f.coord, nil
}

func (f fakeTarget) String() string { return "fake" }

func identityCalibration() *calibration.Calibration {
	// motor_steps * gear_ratio = 2*pi makes angle_per_step exactly 1,
	// so Steps(angleRad) is just angleRad rounded to the nearest step.
	return calibration.New(1, 2*math.Pi)
}

func newTestCoordinator(bearingCfg, decCfg axis.StepperConfig) *Coordinator {
	bearing := axis.New("bearing", bearingCfg, &pulse.LogSink{}, 0, nil)
	dec := axis.New("dec", decCfg, &pulse.LogSink{}, 0, nil)
	cal := &calibration.TelescopeCalibration{Bearing: identityCalibration(), Dec: identityCalibration()}
	return New(bearing, dec, cal, target.Location{}, Config{}, nil)
}

// TestPlanAcquisitionPadsFasterAxis mirrors scenario S5: a bearing slew
// needing roughly 2s and a dec slew needing roughly 0.5s should produce a
// three-activity group, the extra one padding dec out to the bearing
// axis's finish time.
func TestPlanAcquisitionPadsFasterAxis(t *testing.T) {
	cfg := axis.StepperConfig{MinSleepNs: 1000, MaxSpeed: 100, MaxAccel: 100_000, MaxDecel: 100_000}
	c := newTestCoordinator(cfg, cfg)

	fake := fakeTarget{coord: target.Coordinate{HourAngleRad: 200, DecRad: 50}}

	plannedToNs := nowNs()
	group, untilNs, err := c.planAcquisition(fake, plannedToNs)
	if err != nil {
		t.Fatalf("planAcquisition: %v", err)
	}
	if len(group) != 3 {
		t.Fatalf("got %d activities, want 3 (bearing intercept, dec intercept, dec padding)", len(group))
	}

	elapsed := time.Duration(untilNs - plannedToNs)
	if elapsed < 1800*time.Millisecond || elapsed > 2200*time.Millisecond {
		t.Fatalf("sync deadline = %v, want ~2s (bearing's slew time)", elapsed)
	}
}

// TestPlanAcquisitionNoOpWhenAlreadyOnTarget mirrors the case where both
// axes start exactly at the target: no padding is needed since both
// intercepts solve to zero time.
func TestPlanAcquisitionNoOpWhenAlreadyOnTarget(t *testing.T) {
	cfg := axis.StepperConfig{MinSleepNs: 1000, MaxSpeed: 100, MaxAccel: 100_000, MaxDecel: 100_000}
	c := newTestCoordinator(cfg, cfg)

	fake := fakeTarget{coord: target.Coordinate{HourAngleRad: 0, DecRad: 0}}

	plannedToNs := nowNs()
	group, untilNs, err := c.planAcquisition(fake, plannedToNs)
	if err != nil {
		t.Fatalf("planAcquisition: %v", err)
	}
	if len(group) != 2 {
		t.Fatalf("got %d activities, want 2 (no padding needed)", len(group))
	}
	if untilNs != plannedToNs {
		t.Fatalf("sync deadline = %d, want == plannedToNs (%d)", untilNs, plannedToNs)
	}
}

func TestPlanSegmentAdvancesFrontierByPredictDt(t *testing.T) {
	cfg := axis.StepperConfig{MinSleepNs: 1000, MaxSpeed: 100, MaxAccel: 1000, MaxDecel: 1000}
	c := newTestCoordinator(cfg, cfg)

	fake := fakeTarget{coord: target.Coordinate{HourAngleRad: 0, DecRad: 0}}
	plannedToNs := nowNs()

	group, nextNs, err := c.planSegment(fake, plannedToNs)
	if err != nil {
		t.Fatalf("planSegment: %v", err)
	}
	if len(group) != 2 {
		t.Fatalf("got %d activities, want 2 (one run_constant per axis)", len(group))
	}
	if nextNs != plannedToNs+c.cfg.PredictDt.Nanoseconds() {
		t.Fatalf("next frontier = %d, want %d", nextNs, plannedToNs+c.cfg.PredictDt.Nanoseconds())
	}
}

func TestCalibrateMakesOrientationMatchRequestedAngles(t *testing.T) {
	cfg := axis.StepperConfig{MinSleepNs: 1000, MaxSpeed: 100, MaxAccel: 100, MaxDecel: 100}
	c := newTestCoordinator(cfg, cfg)

	c.Calibrate(1.0, -0.5)

	// Offsets are whole steps of 1 rad each: 1.0 is exact, and -0.5 rounds
	// half away from zero to -1 step.
	o := c.Cal.Orientation(c.Bearing.Position(), c.Dec.Position())
	if math.Abs(o.BearingRad-1.0) > 1e-9 {
		t.Fatalf("bearing = %v, want ~1.0", o.BearingRad)
	}
	if math.Abs(o.DecRad-(-1.0)) > 1e-9 {
		t.Fatalf("dec = %v, want ~-1.0 (-0.5 rounded to the nearest step)", o.DecRad)
	}
}

// TestTrackIdleCancelsAcquisition exercises the full goroutine-driven
// lifecycle: Track installs a long-running goal, Idle cancels it, and the
// coordinator shuts down cleanly.
func TestTrackIdleCancelsAcquisition(t *testing.T) {
	cfg := axis.StepperConfig{MinSleepNs: 1_000_000, MaxSpeed: 50, MaxAccel: 50, MaxDecel: 50}
	c := newTestCoordinator(cfg, cfg)
	c.Start()
	defer c.Stop()

	fake := fakeTarget{coord: target.Coordinate{HourAngleRad: 10000, DecRad: 10000}}
	trackAct := c.Track(fake)
	trackAct.WaitFor(func(s axis.Status) bool { return s == axis.Active })

	idleAct := c.Idle()
	idleAct.WaitDone()

	if s := trackAct.WaitDone(); s != axis.Aborted {
		t.Fatalf("track activity ended %v, want Aborted", s)
	}
}
