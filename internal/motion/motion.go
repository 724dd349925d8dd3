// Package motion implements the trapezoidal-intercept motion math that the
// stepper axis controller and telescope coordinator both depend on: the
// closed-form cruise-velocity/intercept-time solver, and pulse-time
// generation for constant-velocity, linear-accel, and trapezoid segments.
package motion

import (
	"math"

	"github.com/asgard/skywatch/pkg/skyerr"
)

// TravelLinAccel returns the signed displacement needed to accelerate from
// vi to vf at constant acceleration a.
func TravelLinAccel(vi, vf, a float64) float64 {
	return (vf*vf - vi*vi) / (2 * a)
}

// InterceptParams is the result of solving for a trapezoidal intercept:
// the cruise velocity and the elapsed time. The accelerations are inputs
// to Intercept and are not carried here.
type InterceptParams struct {
	VCruise float64
	Time    float64
}

// interceptCruiseRoots returns the two roots of the cruise-velocity
// quadratic, each clamped to [-c, c]. Mirrors
// _trapz_intercept_v_c_maxima_roots in the reference implementation.
func interceptCruiseRoots(c, aIn, aOut, pi, vi, vf, qi, u float64) (root1, root2 float64, err error) {
	if math.Abs(u) >= c {
		return 0, 0, skyerr.NewInvalidGoal("target velocity at or above max speed")
	}

	rootInterior := (aIn*aIn-2*aIn*aOut+aOut*aOut)*u*u -
		2*(aIn*aIn-aIn*aOut)*u*vf +
		(aIn*aIn-aIn*aOut)*vf*vf +
		2*(aIn*aOut-aOut*aOut)*u*vi -
		(aIn*aOut-aOut*aOut)*vi*vi +
		2*(aIn*aIn*aOut-aIn*aOut*aOut)*pi -
		2*(aIn*aIn*aOut-aIn*aOut*aOut)*qi

	if rootInterior < 0 {
		return 0, 0, skyerr.NewInvalidGoal("intercept cruise-velocity discriminant is negative")
	}

	rootPart := math.Sqrt(rootInterior)

	root1 = ((aIn-aOut)*u - rootPart) / (aIn - aOut)
	if math.Abs(root1) > c {
		root1 = math.Copysign(c, root1)
	}

	root2 = ((aIn-aOut)*u + rootPart) / (aIn - aOut)
	if math.Abs(root2) > c {
		root2 = math.Copysign(c, root2)
	}
	return root1, root2, nil
}

// interceptTime evaluates the elapsed time to intercept for a candidate
// cruise velocity vc. Mirrors _trapz_intercept_time.
func interceptTime(aIn, aOut, pi, vi, vf, qi, u, vc float64) float64 {
	return 0.5 * (2*aIn*aOut*pi -
		2*aIn*aOut*qi +
		(aIn-aOut)*vc*vc -
		2*aIn*vc*vf +
		aIn*vf*vf +
		2*aOut*vc*vi -
		aOut*vi*vi) /
		(aIn*aOut*u - aIn*aOut*vc)
}

// Intercept solves for the trapezoidal cruise velocity and elapsed time
// such that a body starting at (pi, vi) reaches a target moving at
// (qi + u*t) with final velocity vf, subject to max speed c and signed
// accelerations aIn/aOut.
//
// Of the two roots of the cruise-velocity quadratic, the one yielding the
// larger non-negative time is selected; if both are negative the intercept
// is infeasible and an *skyerr.InvalidGoalError is returned (spec §9: the
// "both roots negative" case is elevated from the reference's Exception to
// an invalid-goal classification).
func Intercept(c, aIn, aOut, pi, vi, vf, qi, u float64) (InterceptParams, error) {
	vc1, vc2, err := interceptCruiseRoots(c, aIn, aOut, pi, vi, vf, qi, u)
	if err != nil {
		return InterceptParams{}, err
	}

	t1 := interceptTime(aIn, aOut, pi, vi, vf, qi, u, vc1)
	t2 := interceptTime(aIn, aOut, pi, vi, vf, qi, u, vc2)
	if t2 >= 0 && (t1 < 0 || t2 >= t1) {
		return InterceptParams{VCruise: vc2, Time: t2}, nil
	}
	if t1 >= 0 {
		return InterceptParams{VCruise: vc1, Time: t1}, nil
	}

	return InterceptParams{}, skyerr.NewInvalidGoal("both intercept roots yield negative time")
}

// ConstantPulseTimes returns, for n signed steps at constant velocity v,
// the elapsed time (seconds, relative to t=0) of each of the |n| pulses.
func ConstantPulseTimes(n int, v float64) []float64 {
	if n == 0 {
		return nil
	}
	abs := n
	if abs < 0 {
		abs = -abs
	}
	sign := math.Copysign(1, float64(n))

	out := make([]float64, abs)
	for k := 0; k < abs; k++ {
		s := sign * float64(k+1)
		out[k] = s / v
	}
	return out
}

// LinearAccelPulseTimes returns, for n signed steps starting at velocity u
// with constant acceleration a, the elapsed time of each of the |n| pulses
// under u*t + 1/2*a*t^2 = k. Of the two quadratic roots, the branch is
// picked once from the first pulse and held for the whole array, since the
// branch can flip on a step-by-step basis otherwise.
func LinearAccelPulseTimes(n int, u, a float64) []float64 {
	if n == 0 {
		return nil
	}
	abs := n
	if abs < 0 {
		abs = -abs
	}
	sign := math.Copysign(1, float64(n))

	out := make([]float64, abs)
	// common(k) = sqrt(2*a*s(k) + u^2), s(k) = sign*(k+1)
	// Determine, from the first step, which root branch keeps n's sign.
	firstS := sign
	firstCommon := math.Sqrt(math.Max(0, 2*a*firstS+u*u))
	negBranch := math.Copysign(float64(n), firstCommon) == float64(n)

	for k := 0; k < abs; k++ {
		s := sign * float64(k+1)
		common := math.Sqrt(math.Max(0, 2*a*s+u*u))
		if negBranch {
			out[k] = -(u - common) / a
		} else {
			out[k] = -(u + common) / a
		}
	}
	return out
}

// discretizeTrapzAccel truncates the accel-in/accel-out travel distances to
// whole step counts, assigning the remainder to the cruise phase.
func discretizeTrapzAccel(sIn, sOut float64, steps int) (stepsIn, stepsCruise, stepsOut int) {
	stepsIn = int(math.Trunc(sIn))
	stepsOut = int(math.Trunc(sOut))
	stepsCruise = steps - (stepsIn + stepsOut)
	return
}

// TrapezoidPulseTimes builds the full pulse-time array for a trapezoidal
// move of `steps` signed steps, split into accel-in / cruise / accel-out
// phases. Returns an error if the accel-in and accel-out phases alone would
// already exceed the total step count.
func TrapezoidPulseTimes(vi, vf, vc, aIn, aOut float64, steps int) ([]float64, error) {
	sIn := TravelLinAccel(vi, vc, aIn)
	sOut := TravelLinAccel(vc, vf, aOut)

	stepsIn, stepsCruise, stepsOut := discretizeTrapzAccel(sIn, sOut, steps)

	absSteps := steps
	if absSteps < 0 {
		absSteps = -absSteps
	}
	if absInOut := abs(stepsIn) + abs(stepsOut); absInOut > absSteps {
		return nil, skyerr.NewInvalidGoal("trapezoid accel phases exceed total step count")
	}

	tIn := LinearAccelPulseTimes(stepsIn, vi, aIn)

	tMax := 0.0
	if stepsIn != 0 {
		tMax = tIn[len(tIn)-1]
	}

	tCruise := ConstantPulseTimes(stepsCruise, vc)
	offset(tCruise, tMax)
	if stepsCruise != 0 {
		tMax = tCruise[len(tCruise)-1]
	}

	tOut := LinearAccelPulseTimes(stepsOut, vc, aOut)
	offset(tOut, tMax)

	out := make([]float64, 0, len(tIn)+len(tCruise)+len(tOut))
	out = append(out, tIn...)
	out = append(out, tCruise...)
	out = append(out, tOut...)
	return out, nil
}

func offset(times []float64, by float64) {
	for i := range times {
		times[i] += by
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
