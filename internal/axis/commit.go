package axis

import "github.com/asgard/skywatch/internal/pulse"

// commitPulseTrain converts a series of time-from-start offsets (seconds)
// into absolute-deadline motion items, advancing ctx and emitting liveness
// NOPs ahead of each one. The velocity attached to the first pulse is the
// velocity the axis is carrying into the train; each subsequent pulse's
// velocity is the rate implied by the gap to the pulse before it — the
// axis's reported velocity therefore always describes the speed the
// executor was already moving at when it fires a given step, not the step
// it is about to take. A pulse that shares its deadline with the pulse
// before it (the closing step of an abort ramp, where the axis reaches
// rest) carries zero velocity.
//
// If checkCancel is true, cancellation is polled before each pulse and
// before each liveness NOP; on a cancellation commitPulseTrain returns
// false without enqueueing anything further, and the caller is expected to
// fall through to an abort deceleration.
func (a *Axis) commitPulseTrain(pa *pendingActivity, motion chan<- motionItem, ctx *planContext, times []float64, dir pulse.Direction, startNs int64, checkCancel bool) bool {
	if len(times) == 0 {
		return true
	}

	deadlines := make([]int64, len(times))
	for i, t := range times {
		deadlines[i] = startNs + roundNs(t)
	}

	velocities := make([]float64, len(times))
	velocities[0] = ctx.commitVel
	for i := 1; i < len(times); i++ {
		if gap := deadlines[i] - deadlines[i-1]; gap > 0 {
			velocities[i] = float64(dir) * 1e9 / float64(gap)
		}
	}

	for i, deadline := range deadlines {
		if checkCancel && pa.canceledLocked() {
			return false
		}

		for _, d := range nopDeadlines(ctx.commitDeadline, deadline, a.config.MaxIntervalNs) {
			if checkCancel && pa.canceledLocked() {
				return false
			}
			motion <- pulseItem(d, pulse.Hold, 0)
		}

		ctx.commitDeadline = deadline
		ctx.commitPos += int(dir)
		ctx.commitVel = velocities[i]
		motion <- pulseItem(deadline, dir, velocities[i])
	}
	return true
}
