package axis

import "github.com/asgard/skywatch/internal/pulse"

// planContext is the planner's frontier: the position, velocity, and
// deadline of the last pulse it has committed to the motion channel, which
// may be well ahead of what the executor has actually fired.
type planContext struct {
	commitPos      int
	commitVel      float64
	commitDeadline int64
}

// plan is the planner goroutine: it pulls one goal at a time off the
// activity queue and expands it into a stream of timed pulses pushed onto
// the bounded motion channel, advancing planContext as it goes. It exits
// after handing a stopGoal's pulses (there are none) to the executor.
func (a *Axis) plan(motion chan<- motionItem) {
	defer a.wg.Done()
	defer close(motion)

	a.stateMu.Lock()
	ctx := planContext{
		commitPos:      a.position,
		commitVel:      a.velocity,
		commitDeadline: nowNs(),
	}
	a.stateMu.Unlock()

	for {
		pa := <-a.activities

		switch g := pa.goal.(type) {
		case idleGoal:
			pa.setStatus(Active)
			motion <- activityItem(pa)

		case stopGoal:
			pa.setStatus(Active)
			motion <- activityItem(pa)
			return

		case interceptGoal:
			if a.planIntercept(pa, g, motion, &ctx) {
				return
			}

		case interceptPrecomputedGoal:
			if a.planInterceptPrecomputed(pa, g, motion, &ctx) {
				return
			}

		case runConstantGoal:
			if a.planRunConstant(pa, g, motion, &ctx) {
				return
			}
		}
	}
}

// planAbort decelerates the axis to a stop from its currently committed
// velocity, completing the activity as Aborted. Always returns false; the
// bool return exists only so callers can `return a.planAbort(...)` from
// within their own bool-returning state handler.
func (a *Axis) planAbort(pa *pendingActivity, motion chan<- motionItem, ctx *planContext) bool {
	pa.setStatus(Aborting)
	ctx.commitDeadline = maxInt64(ctx.commitDeadline, nowNs())

	if ctx.commitVel == 0 {
		motion <- activityItem(pa)
		return false
	}

	dir := pulse.Forward
	if ctx.commitVel < 0 {
		dir = pulse.Reverse
	}
	aOut := -copysign(a.config.MaxDecel, ctx.commitVel)

	stepsFrac := travelLinAccel(ctx.commitVel, 0, aOut)
	steps := int(truncFloat(stepsFrac)) + signInt(stepsFrac)

	times := linearAccelTimes(steps, ctx.commitVel, aOut)
	a.commitPulseTrain(pa, motion, ctx, times, dir, ctx.commitDeadline, false)

	motion <- activityItem(pa)
	return false
}
