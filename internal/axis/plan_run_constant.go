package axis

import "github.com/asgard/skywatch/internal/pulse"

// planRunConstant runs the axis at a fixed velocity, pulse by pulse, until
// goal.deadlineNs, falling back to planAbort if canceled mid-way. A zero
// velocity goal is just a wait: it advances the commit deadline with
// liveness NOPs and never touches position or velocity.
func (a *Axis) planRunConstant(pa *pendingActivity, goal runConstantGoal, motion chan<- motionItem, ctx *planContext) bool {
	pa.setStatus(Active)
	ctx.commitDeadline = maxInt64(ctx.commitDeadline, nowNs())

	if goal.velocity == 0 {
		if ctx.commitDeadline < goal.deadlineNs {
			for _, d := range nopDeadlines(ctx.commitDeadline, goal.deadlineNs, a.config.MaxIntervalNs) {
				motion <- pulseItem(d, pulse.Hold, 0)
			}
			ctx.commitDeadline = goal.deadlineNs
			motion <- pulseItem(goal.deadlineNs, pulse.Hold, 0)
		}
		motion <- activityItem(pa)
		return false
	}

	interval := int64(1e9 / absFloat(goal.velocity))
	dir := pulse.Forward
	if goal.velocity < 0 {
		dir = pulse.Reverse
	}

	for {
		if pa.canceledLocked() {
			return a.planAbort(pa, motion, ctx)
		}

		deadline := ctx.commitDeadline + interval
		done := false
		if deadline > goal.deadlineNs {
			done = true
			deadline = goal.deadlineNs
		}

		for _, d := range nopDeadlines(ctx.commitDeadline, deadline, a.config.MaxIntervalNs) {
			if pa.canceledLocked() {
				return a.planAbort(pa, motion, ctx)
			}
			motion <- pulseItem(d, pulse.Hold, 0)
		}

		ctx.commitDeadline = deadline
		ctx.commitPos += int(dir)
		ctx.commitVel = goal.velocity
		motion <- pulseItem(deadline, dir, goal.velocity)

		if done {
			break
		}
	}

	motion <- activityItem(pa)
	return false
}
