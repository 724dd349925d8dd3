package coordinator

import (
	"fmt"
	"time"

	"github.com/asgard/skywatch/internal/axis"
	"github.com/asgard/skywatch/internal/eventlog"
	"github.com/asgard/skywatch/internal/target"
)

// trackLoop runs the full acquisition, dual-intercept, and steady-state
// tracking sequence for one Track goal. It returns only when act is
// canceled (the normal way a track ends) or when a target/solver error
// makes further tracking impossible.
func (c *Coordinator) trackLoop(act *axis.Activity, tg target.Target) {
	plannedToNs := nowNs() + c.cfg.InitialRunway.Nanoseconds()

	group, untilNs, err := c.planAcquisition(tg, plannedToNs)
	if err != nil {
		c.fail(act, err)
		return
	}
	c.recordEvent(act.ID, eventlog.KindInterceptComputed, tg.String(), fmt.Sprintf("sync_deadline_ns=%d", untilNs))
	plannedToNs = untilNs

	if !c.waitGroup(act, group) {
		return
	}

	for {
		if act.Canceled() {
			act.SetStatus(axis.Aborting)
			act.SetStatus(axis.Aborted)
			return
		}

		segment, nextPlannedToNs, err := c.planSegment(tg, plannedToNs)
		if err != nil {
			c.fail(act, err)
			return
		}
		plannedToNs = nextPlannedToNs

		if !c.waitGroup(act, segment) {
			return
		}
	}
}

// planAcquisition solves the one-time dual intercept that catches both
// axes up to a target first acquired at plannedToNs: the slower axis's
// intercept runs as-is, and the faster axis is padded with a run_constant
// so both activities finish at the same deadline. Returns the full
// three-(or two-, if both axes tie)-activity group and the deadline, in
// nanoseconds, at which both axes are on-target.
func (c *Coordinator) planAcquisition(tg target.Target, plannedToNs int64) ([]*axis.Activity, int64, error) {
	span := c.startSpan("coordinator.planAcquisition")
	defer span.End()

	at := time.Unix(0, plannedToNs)

	coord, err := tg.Coordinate(at, c.Location)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	haRate, decRate, err := target.Velocity(tg, at, c.Location, c.cfg.PredictDt)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	bearingTargetSteps := c.Cal.Bearing.Steps(coord.HourAngleRad)
	decTargetSteps := c.Cal.Dec.Steps(coord.DecRad)
	bearingVel := c.Cal.Bearing.StepsVelocity(haRate)
	decVel := c.Cal.Dec.StepsVelocity(decRate)

	bearingParams, err := axis.ComputeIntercept(c.Bearing.Config(), c.Bearing.Position(), c.Bearing.Velocity(), bearingTargetSteps, bearingVel, bearingVel)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	decParams, err := axis.ComputeIntercept(c.Dec.Config(), c.Dec.Position(), c.Dec.Velocity(), decTargetSteps, decVel, decVel)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	syncTime := bearingParams.Time
	if decParams.Time > syncTime {
		syncTime = decParams.Time
	}
	untilNs := plannedToNs + int64(syncTime*1e9)

	group := []*axis.Activity{
		c.Bearing.InterceptPrecomputed(bearingParams, plannedToNs),
		c.Dec.InterceptPrecomputed(decParams, plannedToNs),
	}

	switch {
	case bearingParams.Time < decParams.Time:
		group = append(group, c.Bearing.RunConstant(bearingVel, untilNs))
	case decParams.Time < bearingParams.Time:
		group = append(group, c.Dec.RunConstant(decVel, untilNs))
	}

	return group, untilNs, nil
}

// planSegment issues one steady-state tracking segment: a run_constant on
// each axis at the target's current angular velocity, running from
// plannedToNs to plannedToNs+PredictDt. Only velocity is resampled; the
// target's position drift across the segment is absorbed by the next
// segment's resample, not corrected mid-segment.
func (c *Coordinator) planSegment(tg target.Target, plannedToNs int64) ([]*axis.Activity, int64, error) {
	span := c.startSpan("coordinator.planSegment")
	defer span.End()

	at := time.Unix(0, plannedToNs)

	haRate, decRate, err := target.Velocity(tg, at, c.Location, c.cfg.PredictDt)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	bearingVel := c.Cal.Bearing.StepsVelocity(haRate)
	decVel := c.Cal.Dec.StepsVelocity(decRate)
	nextPlannedToNs := plannedToNs + c.cfg.PredictDt.Nanoseconds()

	group := []*axis.Activity{
		c.Bearing.RunConstant(bearingVel, nextPlannedToNs),
		c.Dec.RunConstant(decVel, nextPlannedToNs),
	}
	return group, nextPlannedToNs, nil
}
