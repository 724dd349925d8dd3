package axis

import "time"

// StepperConfig bounds the motion an axis is allowed to command.
type StepperConfig struct {
	// MinSleepNs is the minimum wall-clock gap the executor enforces
	// between consecutive pulses, regardless of how tight the planner's
	// deadlines are.
	MinSleepNs int64
	MaxSpeed   float64 // steps/s
	MaxAccel   float64 // steps/s/s
	MaxDecel   float64 // steps/s/s

	// MaxIntervalNs bounds how long the executor may go without a pulse
	// (even a NOP) so that a stalled axis is still observable as "alive"
	// within this interval; the planner backfills NOPs to this cadence.
	MaxIntervalNs int64
}

// DefaultMaxIntervalNs matches the reference stepper's liveness interval.
const DefaultMaxIntervalNs int64 = 250 * int64(time.Millisecond)
