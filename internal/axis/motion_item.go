package axis

import "github.com/asgard/skywatch/internal/pulse"

// motionItem is what flows through the bounded motion channel between the
// planner and the executor: either a single scheduled pulse (possibly a
// NOP, used purely for liveness) or an activity handoff marking that
// everything the planner committed for that activity has been enqueued.
type motionItem struct {
	deadlineNs int64
	dir        pulse.Direction
	velocity   float64
	isPulse    bool

	activity *pendingActivity
}

func pulseItem(deadlineNs int64, dir pulse.Direction, velocity float64) motionItem {
	return motionItem{deadlineNs: deadlineNs, dir: dir, velocity: velocity, isPulse: true}
}

func activityItem(a *pendingActivity) motionItem {
	return motionItem{activity: a}
}
