package axis

import (
	"math"

	"github.com/asgard/skywatch/internal/motion"
)

func travelLinAccel(vi, vf, a float64) float64 { return motion.TravelLinAccel(vi, vf, a) }

func linearAccelTimes(steps int, u, a float64) []float64 { return motion.LinearAccelPulseTimes(steps, u, a) }

func trapezoidTimes(vi, vf, vc, aIn, aOut float64, steps int) ([]float64, error) {
	return motion.TrapezoidPulseTimes(vi, vf, vc, aIn, aOut, steps)
}

func copysign(mag, sign float64) float64 { return math.Copysign(mag, sign) }

func absFloat(v float64) float64 { return math.Abs(v) }

func truncFloat(v float64) float64 { return math.Trunc(v) }

func signInt(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

func roundNs(seconds float64) int64 {
	if seconds >= 0 {
		return int64(seconds*1e9 + 0.5)
	}
	return -int64(-seconds*1e9 + 0.5)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
