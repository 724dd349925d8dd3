package coordinator

import "github.com/asgard/skywatch/internal/target"

// Goal is the sealed set of things a caller can ask the coordinator to do.
// Mirrors axis's own goal sum type at the telescope level: Track, Idle, and
// Stop each install a new coordinator-level Activity; Calibrate and
// CalibrateRelSteps are a side channel applied immediately, without ever
// becoming a Goal (see Coordinator.Calibrate).
type Goal interface {
	isGoal()
}

// TrackGoal asks the coordinator to acquire and then continuously track
// Target across both axes.
type TrackGoal struct {
	Target target.Target
}

func (TrackGoal) isGoal() {}

// IdleGoal cancels whatever the coordinator is doing and leaves both axes
// at rest.
type IdleGoal struct{}

func (IdleGoal) isGoal() {}

// StopGoal asks the coordinator to cancel any in-flight goal, stop both
// axes, and terminate the goal-reader loop.
type StopGoal struct{}

func (StopGoal) isGoal() {}
