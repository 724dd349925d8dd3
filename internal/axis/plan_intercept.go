package axis

import "github.com/asgard/skywatch/internal/pulse"

// planIntercept solves and commits a trapezoidal intercept for a target
// moving at goal.targetVelocity, then hands pulses to the executor one at
// a time, falling back to planAbort if the activity is canceled mid-way.
// Returns true if the planner should exit (only ever false here).
func (a *Axis) planIntercept(pa *pendingActivity, goal interceptGoal, motion chan<- motionItem, ctx *planContext) bool {
	pa.setStatus(Active)

	now := nowNs()
	ctx.commitDeadline = maxInt64(ctx.commitDeadline, now)
	startNs := ctx.commitDeadline

	t0 := float64(startNs-now) / 1e9
	targetAtStart := roundToInt(float64(goal.target) + t0*goal.targetVelocity)

	params, err := ComputeIntercept(a.config, ctx.commitPos, ctx.commitVel, targetAtStart, goal.targetVelocity, goal.finalVelocity)
	if err != nil {
		pa.setErr(err)
		return false
	}

	return a.runIntercept(pa, params, startNs, motion, ctx)
}

// planInterceptPrecomputed executes an intercept whose params were already
// solved by a caller (the coordinator, which solves both axes together
// before committing either one).
func (a *Axis) planInterceptPrecomputed(pa *pendingActivity, goal interceptPrecomputedGoal, motion chan<- motionItem, ctx *planContext) bool {
	pa.setStatus(Active)
	ctx.commitDeadline = maxInt64(ctx.commitDeadline, nowNs())
	return a.runIntercept(pa, goal.params, goal.startNs, motion, ctx)
}

func (a *Axis) runIntercept(pa *pendingActivity, params InterceptParams, startNs int64, motion chan<- motionItem, ctx *planContext) bool {
	if params.Delta == 0 {
		motion <- activityItem(pa)
		return false
	}

	dir := pulse.Forward
	if params.Delta < 0 {
		dir = pulse.Reverse
	}

	times, err := trapezoidTimes(ctx.commitVel, params.VF, params.VCruise, params.AIn, params.AOut, params.Delta)
	if err != nil {
		pa.setErr(err)
		return false
	}

	if !a.commitPulseTrain(pa, motion, ctx, times, dir, startNs, true) {
		return a.planAbort(pa, motion, ctx)
	}

	motion <- activityItem(pa)
	return false
}
