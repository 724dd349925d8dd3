package axis

import "github.com/asgard/skywatch/internal/motion"

// goal is the sealed set of things a caller can ask an axis to do.
type goal interface {
	isGoal()
}

// interceptGoal asks the axis to solve, at plan time, for a trapezoid that
// meets a linearly-moving target at target_velocity and arrives with
// final_velocity.
type interceptGoal struct {
	target         int
	targetVelocity float64
	finalVelocity  float64
}

func (interceptGoal) isGoal() {}

// interceptPrecomputedGoal asks the axis to execute an intercept whose
// trapezoid parameters were already solved by the caller (used by the
// coordinator, which solves both axes' intercepts together before
// committing either one to its planner).
type interceptPrecomputedGoal struct {
	params  InterceptParams
	startNs int64
}

func (interceptPrecomputedGoal) isGoal() {}

// runConstantGoal asks the axis to run at a fixed velocity until a
// deadline, used both for steady-state sky tracking and for the
// dual-axis sync padding the coordinator inserts on the faster axis.
type runConstantGoal struct {
	velocity   float64
	deadlineNs int64
}

func (runConstantGoal) isGoal() {}

// idleGoal is a no-op goal whose only purpose is to round-trip through the
// planner/executor pipeline, letting a caller block until every
// previously queued goal has drained.
type idleGoal struct{}

func (idleGoal) isGoal() {}

// stopGoal asks the planner and executor to shut down after finishing any
// goal ahead of it in the queue.
type stopGoal struct{}

func (stopGoal) isGoal() {}

// InterceptParams is the solved shape of a trapezoidal intercept, as
// produced by ComputeIntercept and consumed by the planner.
type InterceptParams struct {
	Delta   int
	Time    float64
	VCruise float64
	AIn     float64
	AOut    float64
	PF      int
	VF      float64
}

// ComputeIntercept solves for the trapezoid that carries an axis from
// (position, velocity) to meet a target moving at targetVelocity,
// arriving at finalVelocity. accel-in takes the sign of the displacement,
// accel-out the opposite sign, matching the reference stepper's
// compute_intercept.
func ComputeIntercept(cfg StepperConfig, position int, velocity float64, target int, targetVelocity, finalVelocity float64) (InterceptParams, error) {
	delta := target - position
	if delta == 0 {
		return InterceptParams{PF: position, VF: finalVelocity}, nil
	}

	sign := 1.0
	if delta < 0 {
		sign = -1.0
	}
	aIn := sign * cfg.MaxAccel
	aOut := -sign * cfg.MaxDecel

	params, err := motion.Intercept(cfg.MaxSpeed, aIn, aOut, float64(position), velocity, finalVelocity, float64(target), targetVelocity)
	if err != nil {
		return InterceptParams{}, err
	}

	pf := roundToInt(float64(target) + targetVelocity*params.Time)
	return InterceptParams{
		Delta:   pf - position,
		Time:    params.Time,
		VCruise: params.VCruise,
		AIn:     aIn,
		AOut:    aOut,
		PF:      pf,
		VF:      finalVelocity,
	}, nil
}

func roundToInt(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
